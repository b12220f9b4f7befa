package adjudication

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trialsafe/adjudicate/internal/platform/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateSubmit checks the payload before any write begins. The first
// failing field is reported; enumerated fields reject unknown values.
func validateSubmit(in *SubmitInput) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			switch fe.Tag() {
			case "required", "gt":
				return apperr.Validation(fe.Field(), "is required")
			case "oneof":
				return apperr.Validation(fe.Field(), "must be one of: "+strings.ReplaceAll(fe.Param(), " ", ", "))
			default:
				return apperr.Validation(fe.Field(), "is invalid")
			}
		}
		return apperr.Validation("", err.Error())
	}
	return nil
}
