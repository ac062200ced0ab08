package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RequestValidationError marks a request that failed struct validation.
// The error handler maps it to a 400.
type RequestValidationError struct {
	Message string
}

func (e *RequestValidationError) Error() string {
	return e.Message
}

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var errs validator.ValidationErrors
		if ok := errors.As(err, &errs); ok {
			fields := make([]string, len(errs))
			for i, fe := range errs {
				fields[i] = fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
			}
			return &RequestValidationError{Message: strings.Join(fields, ", ")}
		}
		return &RequestValidationError{Message: err.Error()}
	}
	return nil
}
