package competition

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tujenge/shindano/core"
)

var (
	judgeStatusTag  = "judgestatus"
	judgeStatusText = "invalid judge status"
)

// InitValidators registers competition-specific validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(judgeStatusTag, judgeStatusValidation)
	core.RegisterCustomTranslation(validate, translator, judgeStatusTag, judgeStatusText)
}

// judgeStatusValidation checks that the provided value is a known JudgeStatus.
func judgeStatusValidation(fl validator.FieldLevel) bool {
	return JudgeStatus(fl.Field().String()).Valid()
}
