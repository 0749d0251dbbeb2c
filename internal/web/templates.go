// ABOUTME: Template rendering for the storefront console pages
// ABOUTME: Parses inline templates once and renders typed page data

package web

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/vdspices/spicefront/internal/authority"
)

// Template data types
type loginData struct {
	Title string
	Error string
	Email string
}

type pageData struct {
	Title    string
	Active   string
	Identity *authority.Identity
	Blurb    string
}

type accountData struct {
	Title    string
	Active   string
	Identity *authority.Identity
	Message  string
	Success  bool
}

const layoutTmpl = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
  <title>{{.Title}} - VD Spices</title>
</head>
<body>
  <header>
    <h1>VD Spices Console</h1>
    <nav>
      <a href="/dashboard"{{if eq .Active "dashboard"}} class="active"{{end}}>Dashboard</a>
      <a href="/products"{{if eq .Active "products"}} class="active"{{end}}>Products</a>
      <a href="/orders"{{if eq .Active "orders"}} class="active"{{end}}>Orders</a>
      <a href="/users"{{if eq .Active "users"}} class="active"{{end}}>Users</a>
      <a href="/account"{{if eq .Active "account"}} class="active"{{end}}>Account</a>
    </nav>
    <form method="post" action="/logout">
      <span>{{.Identity.Email}}</span>
      <button type="submit">Log out</button>
    </form>
  </header>
  <main>
    {{template "content" .}}
  </main>
</body>
</html>{{end}}`

const loginTmpl = `<!DOCTYPE html>
<html>
<head>
  <title>{{.Title}} - VD Spices</title>
</head>
<body>
  <main>
    <h1>Sign in</h1>
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    <form method="post" action="/login">
      <label>Email <input type="email" name="email" value="{{.Email}}" required></label>
      <label>Password <input type="password" name="password" required></label>
      <button type="submit">Sign in</button>
    </form>
  </main>
</body>
</html>`

const sectionTmpl = `{{define "content"}}
<h2>{{.Title}}</h2>
<p>{{.Blurb}}</p>
{{end}}`

const accountTmpl = `{{define "content"}}
<h2>Account</h2>
{{if .Message}}<p class="{{if .Success}}notice{{else}}error{{end}}">{{.Message}}</p>{{end}}
<form method="post" action="/account/password">
  <label>Current password <input type="password" name="current_password" required></label>
  <label>New password <input type="password" name="new_password" required></label>
  <label>Confirm new password <input type="password" name="confirm_password" required></label>
  <button type="submit">Change password</button>
</form>
{{end}}`

var (
	loginTemplate   = template.Must(template.New("login").Parse(loginTmpl))
	sectionTemplate = template.Must(template.Must(template.New("section").Parse(layoutTmpl)).Parse(sectionTmpl))
	accountTemplate = template.Must(template.Must(template.New("account").Parse(layoutTmpl)).Parse(accountTmpl))
)

func renderTemplate(w http.ResponseWriter, tmpl *template.Template, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Default().Error("failed to render template", "template", name, "error", err)
	}
}

func (c *Console) renderLoginPage(w http.ResponseWriter, errMsg, email string) {
	renderTemplate(w, loginTemplate, "login", loginData{
		Title: "Sign in",
		Error: errMsg,
		Email: email,
	})
}

func (c *Console) renderSection(w http.ResponseWriter, identity *authority.Identity, title, active, blurb string) {
	renderTemplate(w, sectionTemplate, "layout", pageData{
		Title:    title,
		Active:   active,
		Identity: identity,
		Blurb:    blurb,
	})
}

func (c *Console) renderAccountPage(w http.ResponseWriter, identity *authority.Identity, message string, success bool) {
	renderTemplate(w, accountTemplate, "layout", accountData{
		Title:    "Account",
		Active:   "account",
		Identity: identity,
		Message:  message,
		Success:  success,
	})
}
