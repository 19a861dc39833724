package api

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"strconv"  // Version headers
	"strings"  // Header parsing

	"restaurant_system/internal/apperr"     // Error kinds
	"restaurant_system/internal/domain"     // State document
	"restaurant_system/internal/metrics"    // Write counters
	"restaurant_system/internal/middleware" // Session user
	"restaurant_system/internal/store"      // State store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

func etag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

// parseIfMatch returns the version named by an If-Match header, AnyVersion when absent or "*"
func parseIfMatch(header string) (int64, error) {
	h := strings.TrimSpace(header)
	if h == "" || h == "*" {
		return store.AnyVersion, nil
	}
	h = strings.TrimPrefix(h, "W/")
	h = strings.Trim(h, `"`)
	v, err := strconv.ParseInt(h, 10, 64)
	if err != nil || v < 0 {
		return 0, apperr.Validation("Invalid If-Match header.")
	}
	return v, nil
}

// GetStateHandler returns the whole state document with its version as ETag
func GetStateHandler(states store.StateStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := states.Get(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("ETag", etag(snap.Version))
		c.JSON(http.StatusOK, snap.State)
	}
}

// PutStateHandler replaces the state document. Fields missing from the body
// fall back to defaults; an array element of the wrong shape rejects the body. Employees cannot change menu or staff: the
// stored arrays are kept whatever they send.
func PutStateHandler(states store.StateStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			respondError(c, apperr.Validation("Could not read request body."))
			return
		}
		candidate, err := domain.ParseState(raw)
		var elemErr *domain.ElementError
		if errors.As(err, &elemErr) {
			respondError(c, apperr.Validation(fmt.Sprintf("Invalid %s entry at index %d.", elemErr.Field, elemErr.Index)))
			return
		}
		if err != nil {
			respondError(c, apperr.Validation("Invalid JSON body."))
			return
		}
		expect, err := parseIfMatch(c.GetHeader("If-Match"))
		if err != nil {
			respondError(c, err)
			return
		}

		user, _ := middleware.CurrentUser(c)
		snap, err := states.Mutate(c.Request.Context(), expect, func(current *domain.AppState) (bool, error) {
			next := candidate
			if user.Role != domain.RoleAdmin {
				next.Menu = current.Menu
				next.Staff = current.Staff
			}
			*current = next
			return true, nil
		})
		if err != nil {
			metrics.ObserveStateWrite("failure")
			respondError(c, err)
			return
		}
		metrics.ObserveStateWrite("success")
		logrus.WithFields(logrus.Fields{
			"username": user.Username,
			"role":     user.Role,
			"version":  snap.Version,
		}).Debug("State replaced")
		c.Header("ETag", etag(snap.Version))
		c.JSON(http.StatusOK, gin.H{"ok": true, "version": snap.Version})
	}
}
