package router

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mzansicare/booking-api/internal/model"
)

// RegisterValidators installs the domain tags referenced by the request
// binding structs so malformed enums are rejected before a handler runs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	validations := map[string]validator.Func{
		"district":  validDistrict,
		"facility":  validFacility,
		"specialty": validSpecialty,
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func validDistrict(fl validator.FieldLevel) bool {
	return model.District(fl.Field().String()).Valid()
}

func validFacility(fl validator.FieldLevel) bool {
	return model.FacilityType(fl.Field().String()).Valid()
}

func validSpecialty(fl validator.FieldLevel) bool {
	return model.Specialty(fl.Field().String()).Valid()
}
