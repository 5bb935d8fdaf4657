// Package validation checks login and signup records before submission.
package validation

import (
	"regexp"

	"github.com/pi-senac-4/studybuddy-web/internal/models"
)

// Messages shown next to the failing input.
const (
	MsgEmailRequired      = "Email obrigatorio"
	MsgEmailInvalid       = "Email invalido"
	MsgPasswordRequired   = "Senha obrigatoria"
	MsgPasswordWeak       = "Senha deve ter 8+ caracteres, 1 letra e 1 numero"
	MsgNameRequired       = "Nome obrigatorio"
	MsgCourseRequired     = "Curso obrigatorio"
	MsgSemesterRequired   = "Semestre obrigatorio"
	MsgPasswordsDontMatch = "As senhas nao coincidem"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	letterPattern = regexp.MustCompile(`[A-Za-z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidPassword reports whether s has at least MinPasswordLength
// characters, a letter and a digit.
func IsValidPassword(s string) bool {
	return len(s) >= MinPasswordLength && letterPattern.MatchString(s) && digitPattern.MatchString(s)
}

// ValidateLogin returns every problem with c. An empty map means c may be submitted.
func ValidateLogin(c models.LoginCredentials) models.ValidationErrors {
	errs := models.ValidationErrors{}
	checkEmail(errs, c.Email)
	if c.Password == "" {
		errs[models.FieldPassword] = MsgPasswordRequired
	}
	return errs
}

// ValidateSignup returns every problem with p. The confirmation is compared
// even when the password itself already failed.
func ValidateSignup(p models.SignupProfile) models.ValidationErrors {
	errs := models.ValidationErrors{}
	if p.FullName == "" {
		errs[models.FieldFullName] = MsgNameRequired
	}
	checkEmail(errs, p.Email)
	if p.Course == "" {
		errs[models.FieldCourse] = MsgCourseRequired
	}
	if p.Semester == "" {
		errs[models.FieldSemester] = MsgSemesterRequired
	}
	switch {
	case p.Password == "":
		errs[models.FieldPassword] = MsgPasswordRequired
	case !IsValidPassword(p.Password):
		errs[models.FieldPassword] = MsgPasswordWeak
	}
	if p.Password != p.PasswordConfirmation {
		errs[models.FieldPasswordConfirmation] = MsgPasswordsDontMatch
	}
	return errs
}

func checkEmail(errs models.ValidationErrors, email string) {
	switch {
	case email == "":
		errs[models.FieldEmail] = MsgEmailRequired
	case !IsValidEmail(email):
		errs[models.FieldEmail] = MsgEmailInvalid
	}
}
