package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const msgValidationFailed = "Validation failed"

// Field errors are reported under their JSON names.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// respondError maps a domain error to its HTTP status and body. Unavailable is
// checked first since it wraps whatever the downstream call returned.
func respondError(c *gin.Context, err error) {
	var (
		notFound     domain.NotFoundError
		validation   domain.ValidationError
		conflict     domain.ConflictError
		unauthorized domain.UnauthorizedError
		unavailable  domain.UnavailableError
	)
	switch {
	case errors.As(err, &unavailable):
		c.JSON(http.StatusServiceUnavailable, nil)
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, messageResponse{Message: notFound.Error()})
	case errors.As(err, &validation):
		if len(validation.Fields) > 0 {
			c.JSON(http.StatusBadRequest, validationResponse{Message: validation.Error(), Errors: validation.Fields})
			return
		}
		c.JSON(http.StatusBadRequest, messageResponse{Message: validation.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, messageResponse{Message: conflict.Error()})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, messageResponse{Message: unauthorized.Error()})
	default:
		c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}
}

// respondBindError reports request decoding and binding-tag failures as a validation error.
func respondBindError(c *gin.Context, err error) {
	respondError(c, bindError(err))
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ValidationError{Msg: msgValidationFailed, Fields: map[string]string{"body": err.Error()}}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return domain.ValidationError{Msg: msgValidationFailed, Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "email":
		return "must be a well-formed email address"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
