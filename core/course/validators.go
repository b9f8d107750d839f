package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/edupulse/edupulse/core"
)

var (
	levelTag  = "courselevel"
	levelText = "level must be one of beginner, intermediate or advanced"
)

// InitValidators registers the course validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(levelTag, levelValidation)
	core.RegisterCustomTranslation(validate, translator, levelTag, levelText)
}

// levelValidation checks that the level is one of Levels.
func levelValidation(fl validator.FieldLevel) bool {
	lvl := Level(fl.Field().String())
	for _, l := range Levels {
		if lvl == l {
			return true
		}
	}
	return false
}
