package login

import (
	"strings"

	"github.com/a-h/templ"

	"pricecheck/frontend/shared/html"
)

// LoginScreen renders the shared-password prompt.
func LoginScreen(errorMessage string) templ.Component {
	var b strings.Builder
	b.WriteString(`<main class="login-page"><section class="login-card">`)
	b.WriteString(`<h1>Price Check</h1>`)
	b.WriteString(`<p>Enter today's password to start a 30 minute session.</p>`)
	if strings.TrimSpace(errorMessage) != "" {
		b.WriteString(`<p class="error-banner">` + templ.EscapeString(errorMessage) + `</p>`)
	}
	b.WriteString(`<form id="login-form">`)
	b.WriteString(`<input id="login-password" name="password" type="password" inputmode="numeric" autocomplete="off" autofocus placeholder="Password">`)
	b.WriteString(`<p id="login-error" class="error-banner" hidden></p>`)
	b.WriteString(`<button type="submit">Log in</button>`)
	b.WriteString(`</form></section></main>`)
	return html.Page("Login - Price Check", b.String())
}
