package models

// LoginCredentials is the JSON body for POST {API_URL}/login.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// SignupProfile is the JSON body for POST {API_URL}.
type SignupProfile struct {
	FullName             string `json:"nome"`
	Email                string `json:"email"`
	Course               string `json:"curso"`
	Semester             string `json:"semestre"` // "1".."12"
	Password             string `json:"senha"`
	PasswordConfirmation string `json:"confirmarSenha"`
}

// Redacted returns a copy without the password.
func (c LoginCredentials) Redacted() LoginCredentials {
	c.Password = ""
	return c
}

// Redacted returns a copy without either password field.
func (p SignupProfile) Redacted() SignupProfile {
	p.Password = ""
	p.PasswordConfirmation = ""
	return p
}
