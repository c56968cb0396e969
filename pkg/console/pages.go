package console

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/config"
)

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
<h1>Administration</h1>
{{if .Failed}}<p class="error">Invalid username or password.</p>
{{end}}<form method="post" action="{{.Action}}">
<input type="text" name="{{.UsernameParam}}" autofocus>
<input type="password" name="{{.PasswordParam}}">
<label><input type="checkbox" name="{{.RememberMeParam}}"> Remember me</label>
{{if .Redirect}}<input type="hidden" name="{{.RedirectParam}}" value="{{.Redirect}}">
{{end}}<button type="submit">Sign in</button>
</form>
</body>
</html>
`))

type loginView struct {
	Action          string
	UsernameParam   string
	PasswordParam   string
	RememberMeParam string
	RedirectParam   string
	Redirect        string
	Failed          bool
}

// LoginPage renders the login form. The saved request, if any, is carried
// through to the form's redirect field.
func LoginPage(sc config.SecurityConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		view := loginView{
			Action:          sc.LoginProcessingPath,
			UsernameParam:   sc.UsernameParam,
			PasswordParam:   sc.PasswordParam,
			RememberMeParam: sc.RememberMeParam,
			RedirectParam:   sc.RedirectParam,
			Failed:          q.Has("login_error"),
		}
		if sc.RedirectParam != "" {
			view.Redirect = q.Get(sc.RedirectParam)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := loginTemplate.Execute(w, view); err != nil {
			slog.Error("rendering login page", "error", err)
		}
	})
}

// AccessDeniedPage answers 403.
func AccessDeniedPage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "access denied", http.StatusForbidden)
	})
}

// NotFoundPage answers 404.
func NotFoundPage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "page not found", http.StatusNotFound)
	})
}

// AppHandler is the default console application. It greets the principal.
func AppHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := auth.PrincipalFromContext(r.Context())
		if p == nil {
			// The protected chain forwards only with a principal.
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "signed in as %s\n", p.Username)
	})
}
