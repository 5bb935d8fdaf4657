// Package web serves the StudyBuddy login/signup page.
package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/pi-senac-4/studybuddy-web/internal/form"
	"github.com/pi-senac-4/studybuddy-web/internal/middleware"
	"github.com/pi-senac-4/studybuddy-web/internal/models"
	"github.com/pi-senac-4/studybuddy-web/internal/session"
)

var tplPage = template.Must(template.New("page").Parse(pageHTML))

// Handler holds the page's HTTP handlers.
type Handler struct {
	pages    session.Store
	api      form.UserAPI
	recorder form.Recorder
	logger   *slog.Logger
}

func NewHandler(pages session.Store, api form.UserAPI, recorder form.Recorder, logger *slog.Logger) *Handler {
	return &Handler{pages: pages, api: api, recorder: recorder, logger: logger}
}

// Page starts a fresh form for this page session and renders it.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.SessionID(r.Context())
	if !ok {
		http.Error(w, "missing page session", http.StatusInternalServerError)
		return
	}
	st := models.NewState()
	if err := h.pages.Save(r.Context(), id, st); err != nil {
		h.logger.Error("save page state", "error", err)
		http.Error(w, "page state unavailable", http.StatusServiceUnavailable)
		return
	}
	h.render(w, http.StatusOK, st)
}

// Mode switches between the login and signup forms.
func (h *Handler) Mode(w http.ResponseWriter, r *http.Request) {
	mode, err := models.ParseMode(r.PostFormValue("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.SwitchMode(mode)
	h.finish(w, r, id, ctrl, http.StatusOK)
}

// Login applies the posted login fields and submits them.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, models.ModeLogin, (*form.Controller).SubmitLogin)
}

// Signup applies the posted signup fields and submits them.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, models.ModeSignup, (*form.Controller).SubmitSignup)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, mode models.Mode,
	send func(*form.Controller, context.Context) (form.Result, error)) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	id, ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	if ctrl.State().Mode != mode {
		ctrl.SwitchMode(mode)
	}
	for _, f := range mode.Fields() {
		if err := ctrl.UpdateField(mode, f, r.PostForm.Get(string(f))); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	// Records go in before the call; from here on the flight only touches
	// Loading and Notice, so requests made meanwhile are not overwritten.
	if err := h.pages.Save(r.Context(), id, ctrl.State()); err != nil {
		h.logger.Warn("save page state", "error", err)
	}

	res, err := send(ctrl, r.Context())
	switch {
	case errors.Is(err, form.ErrSubmissionInFlight):
		st := ctrl.State()
		st.Loading = true
		h.render(w, http.StatusConflict, st)
		return
	case err != nil:
		h.logger.Error("submit", "mode", mode, "error", err)
		http.Error(w, "submission unavailable", http.StatusServiceUnavailable)
		return
	}

	if res.Submitted {
		h.render(w, http.StatusOK, ctrl.State())
		return
	}
	h.finish(w, r, id, ctrl, http.StatusUnprocessableEntity)
}

// controller loads the page state and wraps it. It writes the error response itself.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (string, *form.Controller, bool) {
	id, ok := middleware.SessionID(r.Context())
	if !ok {
		http.Error(w, "missing page session", http.StatusInternalServerError)
		return "", nil, false
	}
	st, err := h.pages.Load(r.Context(), id)
	if err != nil {
		h.logger.Error("load page state", "error", err)
		http.Error(w, "page state unavailable", http.StatusServiceUnavailable)
		return "", nil, false
	}
	// The gate, not the saved flag, says whether a submission is pending.
	st.Loading, err = h.pages.InFlight(r.Context(), id)
	if err != nil {
		h.logger.Warn("check in-flight", "error", err)
	}

	bg := context.WithoutCancel(r.Context())
	ctrl := form.NewController(st, h.api,
		form.WithRecorder(h.recorder),
		form.WithGate(h.pages.Gate(id)),
		form.WithLogger(h.logger.With("page", id)),
		form.WithStateHook(func(s models.State) { h.mergeFlight(bg, id, s) }),
	)
	return id, ctrl, true
}

// mergeFlight writes only the flight's Loading and Notice onto the latest
// saved state of page id.
func (h *Handler) mergeFlight(ctx context.Context, id string, s models.State) {
	cur, err := h.pages.Load(ctx, id)
	if err != nil {
		h.logger.Warn("load page state", "error", err)
		return
	}
	cur.Loading = s.Loading
	cur.Notice = s.Notice
	if err := h.pages.Save(ctx, id, cur); err != nil {
		h.logger.Warn("save page state", "error", err)
	}
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, id string, ctrl *form.Controller, status int) {
	st := ctrl.State()
	if err := h.pages.Save(r.Context(), id, st); err != nil {
		h.logger.Warn("save page state", "error", err)
	}
	h.render(w, status, st)
}

func (h *Handler) render(w http.ResponseWriter, status int, st models.State) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tplPage.Execute(w, newPageView(st)); err != nil {
		h.logger.Error("render page", "error", err)
	}
}
