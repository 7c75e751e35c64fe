package trainer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/presence/core"
)

var (
	phoneTag   = "phone"
	phoneText  = "{0} must be a phone number"
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

	// password policy
	pwdMinLen     = 6
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to the trainer's name or email"

	attrSplitRegex = regexp.MustCompile(`\W+`)
)

func init() {
	_ = core.Validate.RegisterValidation(phoneTag, phoneValidation)
	core.RegisterCustomTranslation(phoneTag, phoneText)

	core.Validate.RegisterStructValidation(trainerStructValidation, NewTrainer{}, UpdateTrainer{})
	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
}

// cleanPhone drops the separators people type in phone numbers.
func cleanPhone(s string) string {
	return strings.NewReplacer(" ", "", ".", "", "-", "").Replace(strings.TrimSpace(s))
}

func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// trainerStructValidation does struct level validation on NewTrainer and UpdateTrainer structs.
func trainerStructValidation(sl validator.StructLevel) {
	switch tr := sl.Current().Interface().(type) {
	case NewTrainer:
		if tr.Password != "" {
			validatePassword(tr.Password, sl, tr.Name, tr.Surname, tr.Email)
		}
	case UpdateTrainer:
		if tr.Password != "" {
			name, surname, email := tr.Name, tr.Surname, tr.Email
			if name == "" {
				name = tr.current.Name
			}
			if surname == "" {
				surname = tr.current.Surname
			}
			if email == "" {
				email = tr.current.Email
			}
			validatePassword(tr.Password, sl, name, surname, email)
		}
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 6
// - no whitespace
// - no all numeric
// - no similarity with the trainer's attributes
func validatePassword(pwd string, sl validator.StructLevel, attrs ...string) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	runes := []rune(pwd)
	if len(runes) < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	var digitCount int
	for _, char := range runes {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == len(runes) {
		reportErr(pwdNotAllNumTag)
		return
	}

	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		attr = strings.ToLower(attr)
		if tooSimilar(lpwd, attr) {
			reportErr(pwdAttrSimTag)
			return
		}
		for _, part := range attrSplitRegex.Split(attr, -1) {
			if tooSimilar(lpwd, part) {
				reportErr(pwdAttrSimTag)
				return
			}
		}
	}
}

func tooSimilar(pwd, attr string) bool {
	if len(attr) < 3 {
		return false
	}
	ratio := difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(attr, "")).QuickRatio()
	return ratio >= pwdMaxSim
}
