package nav

import "strings"

// TopNav renders the shared header. The session timer span is filled in by
// the page script once an expiry is known.
func TopNav(active string) string {
	var b strings.Builder
	b.WriteString(`<header class="topnav"><span class="brand">Price Check</span><nav>`)
	b.WriteString(link("/lookup", "Lookup", active == "lookup"))
	b.WriteString(link("/catalog", "Catalog", active == "catalog"))
	b.WriteString(`</nav><span id="session-timer" class="session-timer"></span>`)
	b.WriteString(`<form method="post" action="/logout" class="logout-form"><input type="hidden" name="_csrf" value="" data-csrf="1"><button type="submit">Logout</button></form>`)
	b.WriteString(`</header>`)
	return b.String()
}

func link(href, label string, active bool) string {
	if active {
		return `<a href="` + href + `" class="active">` + label + `</a>`
	}
	return `<a href="` + href + `">` + label + `</a>`
}
