// Package pages renders the full HTML pages served by qrstudio.
package pages

// HomeProps configures the generator page.
type HomeProps struct {
	Theme   string
	Presets []string
}

func (p HomeProps) theme() string {
	if p.Theme == "" {
		return "light"
	}
	return p.Theme
}

// PrintProps configures the print page.
type PrintProps struct {
	DataURL string
	Payload string
}
