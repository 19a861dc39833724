package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"restaurant_system/internal/domain" // Public user view
	"restaurant_system/internal/store"  // Credential store

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListUsersHandler returns a page of staff accounts, without passwords
func ListUsersHandler(creds *store.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		users, total, err := creds.List(c.Request.Context(), offset, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		resp := make([]domain.PublicUser, len(users))
		for i := range users {
			resp[i] = users[i].Public()
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":          true,
			"users":       resp,       // List of users
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of users
			"total_pages": totalPages, // Total pages
		})
	}
}
