package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/aussiebroadwan/storefront/internal/api/service"
	"github.com/aussiebroadwan/storefront/pkg/apisdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Roles are stored space delimited.
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return service.ValidRole(fl.Field().String())
	})
	return v
}

// decodeRequest reads and validates a JSON body into v. On failure it has
// already answered 400 and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	log := slogx.FromContext(r.Context())

	if err := httpx.DecodeJSON(r, v); err != nil {
		log.Warn("failed to parse request", "err", err)
		apisdk.ErrInvalidRequest.WriteError(w)
		return false
	}

	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			msg := validationMessage(fieldErrs[0])
			log.Warn("invalid request", "err", msg)
			apisdk.NewAPIError(http.StatusBadRequest, msg).WriteError(w)
			return false
		}
		log.Warn("invalid request", "err", err)
		apisdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	field := fmt.Sprintf("%q", fe.Field())
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "unique":
		return field + " must not contain duplicates"
	case "role":
		return field + " must be a non-empty role without spaces"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
