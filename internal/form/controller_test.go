package form

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/pi-senac-4/studybuddy-web/internal/models"
	"github.com/pi-senac-4/studybuddy-web/internal/userapi"
)

type fakeAPI struct {
	mu      sync.Mutex
	logins  []models.LoginCredentials
	signups []models.SignupProfile
	err     error
	// block, when set, is received from before answering.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeAPI) Login(ctx context.Context, creds models.LoginCredentials) (userapi.Response, error) {
	f.mu.Lock()
	f.logins = append(f.logins, creds)
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return nil, f.err
	}
	return userapi.Response{"ok": true}, nil
}

func (f *fakeAPI) Signup(ctx context.Context, profile models.SignupProfile) (userapi.Response, error) {
	f.mu.Lock()
	f.signups = append(f.signups, profile)
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return nil, f.err
	}
	return userapi.Response{"id": 1}, nil
}

func (f *fakeAPI) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

type fakeRecorder struct {
	attempts []models.Attempt
	err      error
}

func (r *fakeRecorder) Record(ctx context.Context, a models.Attempt) error {
	r.attempts = append(r.attempts, a)
	return r.err
}

type fakeGate struct {
	held     bool
	entered  int
	left     int
	enterErr error
	leaveErr error
}

func (g *fakeGate) Enter(ctx context.Context) (bool, error) {
	if g.enterErr != nil {
		return false, g.enterErr
	}
	if g.held {
		return false, nil
	}
	g.held = true
	g.entered++
	return true, nil
}

func (g *fakeGate) Leave(ctx context.Context) error {
	g.left++
	if g.leaveErr != nil {
		return g.leaveErr
	}
	g.held = false
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fillSignup(t *testing.T, c *Controller, values map[models.Field]string) {
	t.Helper()
	for f, v := range values {
		if err := c.UpdateField(models.ModeSignup, f, v); err != nil {
			t.Fatalf("UpdateField(%s): %v", f, err)
		}
	}
}

func validSignup() map[models.Field]string {
	return map[models.Field]string{
		models.FieldFullName:             "Ana Souza",
		models.FieldEmail:                "ana@senac.br",
		models.FieldCourse:               "Medicina",
		models.FieldSemester:             "4",
		models.FieldPassword:             "Secret12",
		models.FieldPasswordConfirmation: "Secret12",
	}
}

func TestSwitchModeClearsErrors(t *testing.T) {
	c := NewController(models.NewState(), &fakeAPI{}, WithLogger(quietLogger()))

	if errs := c.ValidateLogin(); errs.Empty() {
		t.Fatal("expected errors for empty login")
	}
	c.SwitchMode(models.ModeSignup)

	st := c.State()
	if st.Mode != models.ModeSignup {
		t.Errorf("mode = %s, want signup", st.Mode)
	}
	if !st.Errors.Empty() {
		t.Errorf("errors not cleared: %v", st.Errors)
	}
}

func TestUpdateField(t *testing.T) {
	c := NewController(models.NewState(), &fakeAPI{})

	if err := c.UpdateField(models.ModeLogin, models.FieldEmail, "a@b.co"); err != nil {
		t.Fatal(err)
	}
	if err := c.UpdateField(models.ModeLogin, models.FieldCourse, "x"); !errors.Is(err, models.ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
	if err := c.UpdateField("admin", models.FieldEmail, "x"); !errors.Is(err, models.ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	if got := c.State().Login.Email; got != "a@b.co" {
		t.Errorf("email = %q", got)
	}
	// Editing does not revalidate.
	if c.State().Errors != nil {
		t.Errorf("errors computed on edit")
	}
}

func TestSubmitLogin_InvalidBlocksCall(t *testing.T) {
	api := &fakeAPI{}
	c := NewController(models.NewState(), api, WithLogger(quietLogger()))

	res, err := c.SubmitLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Submitted {
		t.Error("invalid form was submitted")
	}
	if !res.Errors.Has(models.FieldEmail) || !res.Errors.Has(models.FieldPassword) {
		t.Errorf("errors = %v", res.Errors)
	}
	if len(api.logins) != 0 {
		t.Errorf("api called %d times", len(api.logins))
	}
}

func TestSubmitLogin_Success(t *testing.T) {
	api := &fakeAPI{}
	rec := &fakeRecorder{}
	var loading []bool
	c := NewController(models.NewState(), api,
		WithRecorder(rec),
		WithLogger(quietLogger()),
		WithStateHook(func(s models.State) { loading = append(loading, s.Loading) }),
	)
	c.UpdateField(models.ModeLogin, models.FieldEmail, "a@b.co")
	c.UpdateField(models.ModeLogin, models.FieldPassword, "pw")

	res, err := c.SubmitLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Submitted || res.Notice == nil || res.Notice.Kind != models.NoticeSuccess {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Notice.Message != MsgLoginSuccess {
		t.Errorf("message = %q", res.Notice.Message)
	}
	if len(api.logins) != 1 || api.logins[0] != (models.LoginCredentials{Email: "a@b.co", Password: "pw"}) {
		t.Errorf("logins = %v", api.logins)
	}
	if len(loading) != 2 || !loading[0] || loading[1] {
		t.Errorf("loading transitions = %v, want [true false]", loading)
	}
	if c.Loading() {
		t.Error("still loading")
	}
	if len(rec.attempts) != 1 || rec.attempts[0].Outcome != models.OutcomeSuccess {
		t.Errorf("attempts = %+v", rec.attempts)
	}
}

func TestSubmitSignup_PasswordMismatch(t *testing.T) {
	api := &fakeAPI{}
	c := NewController(models.NewState(), api, WithLogger(quietLogger()))
	values := validSignup()
	values[models.FieldPasswordConfirmation] = "Secret13"
	fillSignup(t, c, values)

	res, err := c.SubmitSignup(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Submitted {
		t.Error("mismatched passwords were submitted")
	}
	if len(res.Errors) != 1 || !res.Errors.Has(models.FieldPasswordConfirmation) {
		t.Errorf("errors = %v", res.Errors)
	}
	if len(api.signups) != 0 {
		t.Error("api called")
	}
}

func TestSubmitSignup_Rejected(t *testing.T) {
	api := &fakeAPI{err: &userapi.StatusError{Path: "", StatusCode: 409, Body: "exists"}}
	rec := &fakeRecorder{}
	c := NewController(models.NewState(), api, WithRecorder(rec), WithLogger(quietLogger()))
	fillSignup(t, c, validSignup())

	res, err := c.SubmitSignup(context.Background())
	if err != nil {
		t.Fatalf("remote failure leaked as error: %v", err)
	}
	if res.Notice == nil || res.Notice.Kind != models.NoticeFailure || res.Notice.Message != MsgSignupFailure {
		t.Errorf("notice = %+v", res.Notice)
	}
	if c.Loading() {
		t.Error("loading not reset")
	}
	if got := rec.attempts[0]; got.Outcome != models.OutcomeRejected || got.StatusCode != 409 || got.Email != "ana@senac.br" {
		t.Errorf("attempt = %+v", got)
	}
}

func TestSubmitLogin_TransportError(t *testing.T) {
	api := &fakeAPI{err: errors.New("connection refused")}
	rec := &fakeRecorder{}
	c := NewController(models.NewState(), api, WithRecorder(rec), WithLogger(quietLogger()))
	c.UpdateField(models.ModeLogin, models.FieldEmail, "a@b.co")
	c.UpdateField(models.ModeLogin, models.FieldPassword, "pw")

	res, _ := c.SubmitLogin(context.Background())
	if res.Notice.Message != MsgLoginFailure {
		t.Errorf("message = %q", res.Notice.Message)
	}
	if rec.attempts[0].Outcome != models.OutcomeError {
		t.Errorf("outcome = %s", rec.attempts[0].Outcome)
	}
}

func TestSubmit_InFlight(t *testing.T) {
	api := &fakeAPI{block: make(chan struct{}), entered: make(chan struct{})}
	c := NewController(models.NewState(), api, WithLogger(quietLogger()))
	c.UpdateField(models.ModeLogin, models.FieldEmail, "a@b.co")
	c.UpdateField(models.ModeLogin, models.FieldPassword, "pw")

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.SubmitLogin(context.Background())
	}()
	<-api.entered

	if !c.Loading() {
		t.Error("loading flag not set during call")
	}
	if _, err := c.SubmitLogin(context.Background()); !errors.Is(err, ErrSubmissionInFlight) {
		t.Errorf("second submit: got %v, want ErrSubmissionInFlight", err)
	}

	close(api.block)
	<-done
	if c.Loading() {
		t.Error("loading flag not reset")
	}
	if len(api.logins) != 1 {
		t.Errorf("api called %d times, want 1", len(api.logins))
	}
}

func TestSubmit_GateRefused(t *testing.T) {
	api := &fakeAPI{}
	gate := &fakeGate{held: true}
	c := NewController(models.NewState(), api, WithGate(gate), WithLogger(quietLogger()))
	fillSignup(t, c, validSignup())

	if _, err := c.SubmitSignup(context.Background()); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("got %v, want ErrSubmissionInFlight", err)
	}
	if len(api.signups) != 0 {
		t.Error("api called past a held gate")
	}
	if c.Loading() {
		t.Error("loading set on refused submit")
	}

	gate.held = false
	if _, err := c.SubmitSignup(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gate.entered != 1 || gate.left != 1 || gate.held {
		t.Errorf("gate = %+v", gate)
	}
}

func TestSubmit_BookkeepingErrorsKeepOutcome(t *testing.T) {
	tests := []struct {
		name string
		rec  *fakeRecorder
		gate *fakeGate
	}{
		{"recorder fails", &fakeRecorder{err: errors.New("db down")}, &fakeGate{}},
		{"gate leave fails", &fakeRecorder{}, &fakeGate{leaveErr: errors.New("redis down")}},
		{"both fail", &fakeRecorder{err: errors.New("db down")}, &fakeGate{leaveErr: errors.New("redis down")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			var loading []bool
			c := NewController(models.NewState(), api,
				WithRecorder(tt.rec),
				WithGate(tt.gate),
				WithLogger(quietLogger()),
				WithStateHook(func(s models.State) { loading = append(loading, s.Loading) }),
			)
			c.UpdateField(models.ModeLogin, models.FieldEmail, "a@b.co")
			c.UpdateField(models.ModeLogin, models.FieldPassword, "pw")

			res, err := c.SubmitLogin(context.Background())
			if err != nil {
				t.Fatalf("bookkeeping failure leaked as error: %v", err)
			}
			if res.Notice == nil || res.Notice.Kind != models.NoticeSuccess || res.Notice.Message != MsgLoginSuccess {
				t.Errorf("notice = %+v", res.Notice)
			}
			if c.Loading() {
				t.Error("loading stuck after bookkeeping failure")
			}
			if len(loading) != 2 || loading[1] {
				t.Errorf("loading transitions = %v", loading)
			}
			if tt.gate.left != 1 || len(tt.rec.attempts) != 1 {
				t.Errorf("leave calls = %d, attempts = %d", tt.gate.left, len(tt.rec.attempts))
			}
		})
	}
}

func TestSubmit_GateEnterError(t *testing.T) {
	api := &fakeAPI{}
	gate := &fakeGate{enterErr: errors.New("redis down")}
	var hooked int
	c := NewController(models.NewState(), api,
		WithGate(gate),
		WithLogger(quietLogger()),
		WithStateHook(func(models.State) { hooked++ }),
	)
	c.UpdateField(models.ModeLogin, models.FieldEmail, "a@b.co")
	c.UpdateField(models.ModeLogin, models.FieldPassword, "pw")

	_, err := c.SubmitLogin(context.Background())
	if err == nil || errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("err = %v, want gate error", err)
	}
	if c.Loading() {
		t.Error("loading left set after gate error")
	}
	if hooked != 0 || len(api.logins) != 0 {
		t.Errorf("hook calls = %d, api calls = %d", hooked, len(api.logins))
	}
}

func TestSubmit_ValidationClearsStaleNotice(t *testing.T) {
	c := NewController(models.NewState(), &fakeAPI{}, WithLogger(quietLogger()))
	c.UpdateField(models.ModeLogin, models.FieldEmail, "a@b.co")
	c.UpdateField(models.ModeLogin, models.FieldPassword, "pw")
	if res, _ := c.SubmitLogin(context.Background()); res.Notice == nil {
		t.Fatal("no notice after first submit")
	}

	c.UpdateField(models.ModeLogin, models.FieldEmail, "")
	res, err := c.SubmitLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Submitted || !res.Errors.Has(models.FieldEmail) {
		t.Fatalf("unexpected result %+v", res)
	}
	if n := c.State().Notice; n != nil {
		t.Errorf("stale notice kept next to inline errors: %+v", n)
	}
}
