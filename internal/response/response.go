// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"errors"
	"log/slog"
	"strings"

	"project_tracker/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Envelope is the body of every response
type Envelope struct {
	ErrCode int               `json:"errcode"`
	ErrMsg  string            `json:"errmsg"`
	Data    interface{}       `json:"data,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// OK writes data with errcode 0
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Data: data})
}

// Error aborts the request with the status and public message of err.
// Internal errors are logged with their cause, which never reaches the caller.
func Error(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if apperror.KindOf(err) == apperror.KindInternal {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"error", err,
		)
	}

	body := Envelope{ErrCode: status, ErrMsg: apperror.PublicMessage(err)}
	var appErr *apperror.Error
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		body.Fields = appErr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// BindError turns a gin binding failure into a validation error naming each rejected field
func BindError(err error) *apperror.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation("Invalid request", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[lowerFirst(fe.Field())] = fe.Tag()
	}
	return apperror.Validation("Invalid request", fields)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
