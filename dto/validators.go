package dto

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"teamboard/model"
)

// RegisterValidators adds the task enum validators to gin's binding engine.
// Empty values pass so that omitted fields fall through to the service.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	if err := v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || model.Status(s).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("taskpriority", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return p == "" || model.Priority(p).Valid()
	})
}
