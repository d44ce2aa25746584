package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const pageStyle = `body{font-family:system-ui,sans-serif;background:#f4f5f7;margin:0}` +
	`main{max-width:22rem;margin:4rem auto;background:#fff;padding:2rem;border-radius:8px;` +
	`box-shadow:0 1px 3px rgba(0,0,0,.15)}` +
	`label{display:block;margin-top:1rem}input[type=text],input[type=password]{width:100%;` +
	`padding:.5rem;box-sizing:border-box}button{margin-top:1.5rem;width:100%;padding:.6rem}` +
	`.error{color:#b00020;margin-top:1rem}`

// layout wraps body in the shared page chrome.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+`</title><style>`+pageStyle+`</style></head><body><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// LoginPage renders the username/password form for a realm. The OAuth
// parameters and the CSRF token travel as hidden fields.
func LoginPage(props LoginPageProps) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.write(`<h1>Sign in to ` + templ.EscapeString(props.Realm) + `</h1>`)
		if props.Error != "" {
			sw.write(`<p class="error" role="alert">` + templ.EscapeString(props.Error) + `</p>`)
		}
		sw.write(`<form method="POST" action="` + templ.EscapeString(props.Action) + `">`)
		sw.write(`<input type="hidden" name="csrf_token" value="` + templ.EscapeString(props.CSRFToken) + `">`)
		for _, f := range props.Hidden {
			sw.write(`<input type="hidden" name="` + templ.EscapeString(f.Name) +
				`" value="` + templ.EscapeString(f.Value) + `">`)
		}
		sw.write(`<label for="username">Username</label>`)
		sw.write(`<input type="text" id="username" name="username" autocomplete="username" required value="` +
			templ.EscapeString(props.Username) + `">`)
		sw.write(`<label for="password">Password</label>`)
		sw.write(`<input type="password" id="password" name="password" autocomplete="current-password" required>`)
		sw.write(`<button type="submit">Sign in</button></form>`)
		return sw.err
	})
	return layout("Sign in", body)
}

// ErrorPage renders a terminal error shown instead of redirecting.
func ErrorPage(props ErrorPageProps) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.write(`<h1>` + templ.EscapeString(props.Title) + `</h1>`)
		sw.write(`<p class="error">` + templ.EscapeString(props.Message) + `</p>`)
		return sw.err
	})
	return layout(props.Title, body)
}

// stickyWriter keeps the first write error and drops later writes.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) write(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}
