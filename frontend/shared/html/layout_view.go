package html

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

// RenderLayout wraps a body fragment in the shared document shell.
func RenderLayout(title, body string) string {
	var b strings.Builder
	b.WriteString("<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\">")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
	fmt.Fprintf(&b, "<title>%s</title>", templ.EscapeString(title))
	b.WriteString("<link rel=\"stylesheet\" href=\"/assets/app.css\"></head><body>")
	b.WriteString(body)
	b.WriteString("<script src=\"/assets/app.js\"></script></body></html>")
	return b.String()
}

// Page wraps a body fragment into a renderable component.
func Page(title, body string) templ.Component {
	return templ.Raw(RenderLayout(title, body))
}
