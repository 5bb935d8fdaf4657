package web

import (
	"github.com/pi-senac-4/studybuddy-web/internal/models"
)

type fieldMeta struct {
	Label       string
	Type        string
	Placeholder string
	Min, Max    string
}

var fieldMetas = map[models.Field]fieldMeta{
	models.FieldFullName:             {Label: "Nome Completo", Type: "text", Placeholder: "Seu nome"},
	models.FieldEmail:                {Label: "Email", Type: "email", Placeholder: "seu@email.com"},
	models.FieldCourse:               {Label: "Curso", Type: "text", Placeholder: "Ex: Medicina"},
	models.FieldSemester:             {Label: "Semestre", Type: "number", Placeholder: "1-12", Min: "1", Max: "12"},
	models.FieldPassword:             {Label: "Senha", Type: "password", Placeholder: "senha"},
	models.FieldPasswordConfirmation: {Label: "Confirmar Senha", Type: "password", Placeholder: "confirmar senha"},
}

type fieldView struct {
	Key         string
	Label       string
	Type        string
	Placeholder string
	Min, Max    string
	Value       string
	Error       string
}

type pageView struct {
	IsLogin     bool
	Action      string
	SubmitLabel string
	Loading     bool
	Fields      []fieldView
	Notice      *models.Notification
}

func newPageView(st models.State) pageView {
	v := pageView{
		IsLogin: st.Mode != models.ModeSignup,
		Loading: st.Loading,
		Notice:  st.Notice,
	}
	if v.IsLogin {
		v.Action, v.SubmitLabel = "/login", "Entrar"
	} else {
		v.Action, v.SubmitLabel = "/signup", "Criar Conta"
	}
	if v.Loading {
		v.SubmitLabel = "Carregando..."
	}

	mode := models.ModeLogin
	if !v.IsLogin {
		mode = models.ModeSignup
	}
	for _, f := range mode.Fields() {
		meta := fieldMetas[f]
		fv := fieldView{
			Key:         string(f),
			Label:       meta.Label,
			Type:        meta.Type,
			Placeholder: meta.Placeholder,
			Min:         meta.Min,
			Max:         meta.Max,
			Error:       st.Errors.Message(f),
		}
		if fv.Type != "password" {
			fv.Value = fieldValue(st, mode, f)
		}
		v.Fields = append(v.Fields, fv)
	}
	return v
}

func fieldValue(st models.State, mode models.Mode, f models.Field) string {
	if mode == models.ModeLogin {
		if f == models.FieldEmail {
			return st.Login.Email
		}
		return ""
	}
	switch f {
	case models.FieldFullName:
		return st.Signup.FullName
	case models.FieldEmail:
		return st.Signup.Email
	case models.FieldCourse:
		return st.Signup.Course
	case models.FieldSemester:
		return st.Signup.Semester
	}
	return ""
}

const pageHTML = `<!doctype html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>StudyBuddy</title></head>
<body>
  <main class="card">
    <header>
      <span class="logo">SB</span>
      <h1>StudyBuddy</h1>
      <p>Nunca mais estude sozinho</p>
    </header>

    <nav class="tabs">
      <form method="post" action="/mode"><input type="hidden" name="mode" value="login">
        <button type="submit"{{if .IsLogin}} class="active"{{end}}>Entrar</button></form>
      <form method="post" action="/mode"><input type="hidden" name="mode" value="signup">
        <button type="submit"{{if not .IsLogin}} class="active"{{end}}>Cadastrar</button></form>
    </nav>

    {{with .Notice}}<div role="alert" class="notice notice-{{.Kind}}">{{.Message}}</div>{{end}}

    <form method="post" action="{{.Action}}" novalidate>
      {{range .Fields}}
      <div class="field{{if .Error}} invalid{{end}}">
        <label for="{{.Key}}">{{.Label}}</label>
        <input id="{{.Key}}" name="{{.Key}}" type="{{.Type}}" placeholder="{{.Placeholder}}" value="{{.Value}}"{{if .Min}} min="{{.Min}}"{{end}}{{if .Max}} max="{{.Max}}"{{end}}>
        {{if .Error}}<p class="error" data-field="{{.Key}}">{{.Error}}</p>{{end}}
      </div>
      {{end}}
      <button type="submit"{{if .Loading}} disabled{{end}}>{{.SubmitLabel}}</button>
    </form>
  </main>
</body>
</html>`
