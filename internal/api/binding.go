package api

import (
	"bytes"   // Empty body detection
	"errors"  // Error inspection
	"io"      // Body replacement
	"strconv" // Rule parameters
	"sync"    // One-time validator setup

	"restaurant_system/internal/apperr" // Error kinds

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Gin validator engine
	"github.com/go-playground/validator/v10" // Struct validation rules
	"github.com/sirupsen/logrus"             // Logging
)

// validationMessages maps a failed rule, keyed "Field.tag", to the client message
type validationMessages interface {
	validationMessages() map[string]string
}

var registerRules sync.Once

// registerValidations adds the rules gin does not ship with
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		logrus.Error("Gin validator engine is not go-playground/validator")
		return
	}
	// maxbytes limits the encoded length; bcrypt reads at most 72 bytes
	if err := v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= limit
	}); err != nil {
		logrus.WithField("error", err.Error()).Error("Failed to register maxbytes rule")
	}
}

// bindBody binds the JSON body into dst with gin and runs its binding rules.
// An empty body binds like {}.
func bindBody(c *gin.Context, dst any) error {
	registerRules.Do(registerValidations)
	raw, err := c.GetRawData()
	if err != nil {
		return apperr.Validation("Could not read request body.")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw)) // GetRawData drained it

	err = c.ShouldBindJSON(dst)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperr.Validation(validationMessage(dst, verrs))
	}
	if err != nil {
		return apperr.Validation("Invalid JSON body.")
	}
	return nil
}

// validationMessage picks the message of the first failed required rule, or else of the first failure
func validationMessage(dst any, verrs validator.ValidationErrors) string {
	src, ok := dst.(validationMessages)
	if !ok {
		return "Invalid request body."
	}
	messages := src.validationMessages()
	first := verrs[0]
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			first = fe // Missing fields are reported before malformed ones
			break
		}
	}
	if msg, ok := messages[first.StructField()+"."+first.Tag()]; ok {
		return msg
	}
	return "Invalid request body."
}
