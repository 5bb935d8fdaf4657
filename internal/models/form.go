package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidMode  = errors.New("invalid mode")
	ErrUnknownField = errors.New("unknown field")
)

// Mode selects which of the two forms is displayed and editable.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// ParseMode accepts "login" or "signup".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLogin, ModeSignup:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Field identifies one input of either form. Its value is the wire key.
type Field string

const (
	FieldEmail                Field = "email"
	FieldPassword             Field = "senha"
	FieldFullName             Field = "nome"
	FieldCourse               Field = "curso"
	FieldSemester             Field = "semestre"
	FieldPasswordConfirmation Field = "confirmarSenha"
)

// LoginFields lists the inputs of the login form in display order.
var LoginFields = []Field{FieldEmail, FieldPassword}

// SignupFields lists the inputs of the signup form in display order.
var SignupFields = []Field{
	FieldFullName,
	FieldEmail,
	FieldCourse,
	FieldSemester,
	FieldPassword,
	FieldPasswordConfirmation,
}

// ParseField maps a wire key to its Field.
func ParseField(key string) (Field, error) {
	switch f := Field(key); f {
	case FieldEmail, FieldPassword, FieldFullName, FieldCourse, FieldSemester, FieldPasswordConfirmation:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, key)
}

// Fields returns the inputs that belong to the form shown in mode m.
func (m Mode) Fields() []Field {
	if m == ModeSignup {
		return SignupFields
	}
	return LoginFields
}

// ValidationErrors maps a field to its message. A nil or empty map means valid.
type ValidationErrors map[Field]string

func (e ValidationErrors) Empty() bool { return len(e) == 0 }

func (e ValidationErrors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

func (e ValidationErrors) Message(f Field) string { return e[f] }

// NoticeKind distinguishes success from failure alerts.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeFailure NoticeKind = "failure"
)

// Notification is the alert surfaced after a submission completes.
type Notification struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// State is everything one page session holds.
type State struct {
	Mode    Mode             `json:"mode"`
	Login   LoginCredentials `json:"login"`
	Signup  SignupProfile    `json:"signup"`
	Errors  ValidationErrors `json:"errors,omitempty"`
	Loading bool             `json:"loading"`
	Notice  *Notification    `json:"notice,omitempty"`
}

// NewState returns the state of a freshly loaded page.
func NewState() State {
	return State{Mode: ModeLogin}
}

// Redacted returns a copy safe to persist outside the request.
func (s State) Redacted() State {
	s.Login = s.Login.Redacted()
	s.Signup = s.Signup.Redacted()
	if s.Errors != nil {
		errs := make(ValidationErrors, len(s.Errors))
		for k, v := range s.Errors {
			errs[k] = v
		}
		s.Errors = errs
	}
	return s
}

// Outcome is the result class of one remote submission.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected" // non-2xx
	OutcomeError    Outcome = "error"    // transport or decode failure
)

// Attempt is one diagnostics record of a submission. It never carries passwords.
type Attempt struct {
	Mode       Mode      `json:"mode"        bson:"mode"`
	Email      string    `json:"email"       bson:"email"`
	Outcome    Outcome   `json:"outcome"     bson:"outcome"`
	StatusCode int       `json:"status_code" bson:"status_code"`
	Detail     string    `json:"detail"      bson:"detail"`
	At         time.Time `json:"at"          bson:"at"`
}
