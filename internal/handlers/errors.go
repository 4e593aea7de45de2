package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"medflow-backend/internal/apperrors"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report the JSON name of a field.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// respondError writes err as {"message", "field"} with its mapped status.
// Unclassified errors are logged and hidden behind a generic message.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	body := gin.H{"message": err.Error()}

	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		body["message"] = verr.Message
		if verr.Field != "" {
			body["field"] = verr.Field
		}
	case status == http.StatusInternalServerError:
		h.log.WithRequestID(requestIDOf(c)).
			WithError(err).
			WithField("path", c.FullPath()).
			Error("request failed")
		body["message"] = "Internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}

// bindError converts a gin binding failure into a ValidationError carrying
// the first failing field.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.Validation(fe.Field(), fieldMessage(fe))
	}
	var terr *json.UnmarshalTypeError
	if errors.As(err, &terr) && terr.Field != "" {
		return apperrors.Validation(terr.Field, fmt.Sprintf("%s must be a %s", terr.Field, terr.Type))
	}
	return apperrors.Validation("", "Invalid request body")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
