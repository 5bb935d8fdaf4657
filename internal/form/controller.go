// Package form holds the login/signup Form Controller: mode switching,
// field edits, validation and submission to the user API.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pi-senac-4/studybuddy-web/internal/models"
	"github.com/pi-senac-4/studybuddy-web/internal/userapi"
	"github.com/pi-senac-4/studybuddy-web/internal/validation"
)

// ErrSubmissionInFlight is returned when a submit arrives while another is pending.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// Notification messages.
const (
	MsgLoginSuccess  = "Login realizado com sucesso!"
	MsgLoginFailure  = "Erro ao fazer login"
	MsgSignupSuccess = "Cadastro realizado com sucesso!"
	MsgSignupFailure = "Erro ao cadastrar usuário"
)

// UserAPI is the remote collaborator. *userapi.Client satisfies it.
type UserAPI interface {
	Login(ctx context.Context, creds models.LoginCredentials) (userapi.Response, error)
	Signup(ctx context.Context, profile models.SignupProfile) (userapi.Response, error)
}

// Recorder receives one Attempt per completed remote call.
type Recorder interface {
	Record(ctx context.Context, a models.Attempt) error
}

// Gate extends the loading flag beyond this process. Enter returns false
// when another submission already holds it.
type Gate interface {
	Enter(ctx context.Context) (bool, error)
	Leave(ctx context.Context) error
}

// Result describes what a submit did.
type Result struct {
	// Submitted is false when validation blocked the call.
	Submitted bool
	Errors    models.ValidationErrors
	Notice    *models.Notification
}

// Controller owns one page session's State.
type Controller struct {
	mu       sync.Mutex
	state    models.State
	api      UserAPI
	recorder Recorder
	gate     Gate
	hook     func(models.State)
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Controller)

func WithRecorder(r Recorder) Option { return func(c *Controller) { c.recorder = r } }

func WithGate(g Gate) Option { return func(c *Controller) { c.gate = g } }

// WithStateHook registers fn to be called with a snapshot each time the
// loading flag changes. fn runs without the controller lock held.
func WithStateHook(fn func(models.State)) Option { return func(c *Controller) { c.hook = fn } }

func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.logger = l } }

func NewController(state models.State, api UserAPI, opts ...Option) *Controller {
	if state.Mode == "" {
		state.Mode = models.ModeLogin
	}
	c := &Controller{
		state:  state,
		api:    api,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() models.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Loading
}

// SwitchMode activates target and clears validation errors.
func (c *Controller) SwitchMode(target models.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Mode = target
	c.state.Errors = nil
	c.state.Notice = nil
}

// UpdateField writes value into the record of form mode. It does not revalidate.
func (c *Controller) UpdateField(mode models.Mode, field models.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch mode {
	case models.ModeLogin:
		return setLoginField(&c.state.Login, field, value)
	case models.ModeSignup:
		return setSignupField(&c.state.Signup, field, value)
	}
	return fmt.Errorf("%w: %q", models.ErrInvalidMode, mode)
}

func setLoginField(l *models.LoginCredentials, field models.Field, value string) error {
	switch field {
	case models.FieldEmail:
		l.Email = value
	case models.FieldPassword:
		l.Password = value
	default:
		return fmt.Errorf("%w: %q in login form", models.ErrUnknownField, field)
	}
	return nil
}

func setSignupField(p *models.SignupProfile, field models.Field, value string) error {
	switch field {
	case models.FieldFullName:
		p.FullName = value
	case models.FieldEmail:
		p.Email = value
	case models.FieldCourse:
		p.Course = value
	case models.FieldSemester:
		p.Semester = value
	case models.FieldPassword:
		p.Password = value
	case models.FieldPasswordConfirmation:
		p.PasswordConfirmation = value
	default:
		return fmt.Errorf("%w: %q in signup form", models.ErrUnknownField, field)
	}
	return nil
}

// ValidateLogin recomputes the error map from the login record.
func (c *Controller) ValidateLogin() models.ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Errors = validation.ValidateLogin(c.state.Login)
	return copyErrors(c.state.Errors)
}

// ValidateSignup recomputes the error map from the signup record.
func (c *Controller) ValidateSignup() models.ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Errors = validation.ValidateSignup(c.state.Signup)
	return copyErrors(c.state.Errors)
}

// SubmitLogin validates the login record and, if valid, posts it.
func (c *Controller) SubmitLogin(ctx context.Context) (Result, error) {
	return c.submit(ctx, submission{
		mode: models.ModeLogin,
		validate: func(s *models.State) models.ValidationErrors {
			return validation.ValidateLogin(s.Login)
		},
		call: func(ctx context.Context, s models.State) (userapi.Response, error) {
			return c.api.Login(ctx, s.Login)
		},
		email:   func(s models.State) string { return s.Login.Email },
		success: MsgLoginSuccess,
		failure: MsgLoginFailure,
	})
}

// SubmitSignup validates the signup record and, if valid, posts it.
func (c *Controller) SubmitSignup(ctx context.Context) (Result, error) {
	return c.submit(ctx, submission{
		mode: models.ModeSignup,
		validate: func(s *models.State) models.ValidationErrors {
			return validation.ValidateSignup(s.Signup)
		},
		call: func(ctx context.Context, s models.State) (userapi.Response, error) {
			return c.api.Signup(ctx, s.Signup)
		},
		email:   func(s models.State) string { return s.Signup.Email },
		success: MsgSignupSuccess,
		failure: MsgSignupFailure,
	})
}

type submission struct {
	mode     models.Mode
	validate func(*models.State) models.ValidationErrors
	call     func(context.Context, models.State) (userapi.Response, error)
	email    func(models.State) string
	success  string
	failure  string
}

func (c *Controller) submit(ctx context.Context, sub submission) (Result, error) {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}
	errs := sub.validate(&c.state)
	c.state.Errors = errs
	if !errs.Empty() {
		c.state.Notice = nil
		c.mu.Unlock()
		return Result{Errors: copyErrors(errs)}, nil
	}
	// Reserve the flag before releasing the lock so a concurrent submit
	// on this controller is refused while the gate is consulted.
	c.state.Loading = true
	c.state.Notice = nil
	pending := c.snapshot()
	c.mu.Unlock()

	if c.gate != nil {
		ok, err := c.gate.Enter(ctx)
		if err != nil || !ok {
			c.mu.Lock()
			c.state.Loading = false
			c.mu.Unlock()
			if err != nil {
				return Result{}, fmt.Errorf("enter gate: %w", err)
			}
			return Result{}, ErrSubmissionInFlight
		}
	}
	c.notify(pending)

	resp, err := sub.call(ctx, pending)

	attempt := models.Attempt{Mode: sub.mode, Email: sub.email(pending), At: c.now()}
	notice := &models.Notification{Kind: models.NoticeSuccess, Message: sub.success}
	if err != nil {
		notice = &models.Notification{Kind: models.NoticeFailure, Message: sub.failure}
		attempt.Outcome, attempt.StatusCode = classify(err)
		attempt.Detail = err.Error()
		c.logger.Error("submission failed", "mode", sub.mode, "error", err)
	} else {
		attempt.Outcome = models.OutcomeSuccess
		c.logger.Info("submission succeeded", "mode", sub.mode)
		c.logger.Debug("user-api response", "mode", sub.mode, "body", resp)
	}

	// The submit is not cancellable; bookkeeping outlives the caller's context.
	bg := context.WithoutCancel(ctx)
	if c.recorder != nil {
		if rerr := c.recorder.Record(bg, attempt); rerr != nil {
			c.logger.Warn("record attempt", "error", rerr)
		}
	}
	if c.gate != nil {
		if gerr := c.gate.Leave(bg); gerr != nil {
			c.logger.Warn("leave gate", "error", gerr)
		}
	}

	c.mu.Lock()
	c.state.Loading = false
	c.state.Notice = notice
	done := c.snapshot()
	c.mu.Unlock()
	c.notify(done)

	return Result{Submitted: true, Errors: models.ValidationErrors{}, Notice: notice}, nil
}

func classify(err error) (models.Outcome, int) {
	var se *userapi.StatusError
	if errors.As(err, &se) {
		return models.OutcomeRejected, se.StatusCode
	}
	return models.OutcomeError, 0
}

func (c *Controller) notify(s models.State) {
	if c.hook != nil {
		c.hook(s)
	}
}

// snapshot must be called with mu held.
func (c *Controller) snapshot() models.State {
	s := c.state
	s.Errors = copyErrors(c.state.Errors)
	if c.state.Notice != nil {
		n := *c.state.Notice
		s.Notice = &n
	}
	return s
}

func copyErrors(e models.ValidationErrors) models.ValidationErrors {
	if e == nil {
		return nil
	}
	out := make(models.ValidationErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
