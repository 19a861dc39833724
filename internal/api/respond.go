package api

import (
	"encoding/json" // Flexible id decoding
	"strconv"       // Numeric strings
	"strings"       // Trimming

	"restaurant_system/internal/apperr" // Error kinds

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// respondError writes err as {ok:false, error} with the status of its kind.
// Internal errors are logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed")
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(apperr.Status(err), gin.H{"ok": false, "error": apperr.PublicMessage(err)})
}

// looseString accepts any JSON scalar and keeps its text, so {"username": 123} reads as "123"
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	switch t := strings.TrimSpace(string(data)); {
	case t == "null", strings.HasPrefix(t, "{"), strings.HasPrefix(t, "["):
		*s = "" // Treated as not sent
	default:
		*s = looseString(t) // Numbers and booleans
	}
	return nil
}

func (s looseString) trimmed() string { return strings.TrimSpace(string(s)) }

// trimmedString is a looseString with surrounding whitespace removed, so binding rules see the trimmed text
type trimmedString string

func (s *trimmedString) UnmarshalJSON(data []byte) error {
	var l looseString
	if err := l.UnmarshalJSON(data); err != nil {
		return err
	}
	*s = trimmedString(l.trimmed())
	return nil
}

// orderRef is an order id sent either as a JSON number or a numeric string
type orderRef struct {
	id    int64
	valid bool
}

func (r *orderRef) UnmarshalJSON(data []byte) error {
	*r = orderRef{}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			*r = orderRef{id: v, valid: true}
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			*r = orderRef{id: v, valid: true}
		}
	}
	return nil // Anything else counts as no id
}

// ptr returns the id or nil when none was sent
func (r orderRef) ptr() *int64 {
	if !r.valid {
		return nil
	}
	id := r.id
	return &id
}
