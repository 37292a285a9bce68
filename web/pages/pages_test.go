package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestHomePage(t *testing.T) {
	out := render(t, HomePage(HomeProps{Theme: "dark", Presets: []string{"brand", `<x>`}}))
	for _, want := range []string{
		`data-theme="dark"`,
		`<option value="wifi">WiFi</option>`,
		`<select name="preset">`,
		`<option>brand</option>`,
		`<option>&lt;x&gt;</option>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestHomePageDefaults(t *testing.T) {
	out := render(t, HomePage(HomeProps{}))
	if !strings.Contains(out, `data-theme="light"`) {
		t.Error("empty theme should render light")
	}
	if strings.Contains(out, `name="preset"`) {
		t.Error("preset selector shown without presets")
	}
}

func TestPrintPage(t *testing.T) {
	out := render(t, PrintPage(PrintProps{DataURL: "data:image/png;base64,AAAA", Payload: "a&b"}))
	for _, want := range []string{
		`onload="window.print()"`,
		`src="data:image/png;base64,AAAA"`,
		`<p>a&amp;b</p>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("print page missing %q", want)
		}
	}
	if strings.Contains(render(t, PrintPage(PrintProps{DataURL: "data:,"})), "<p>") {
		t.Error("empty payload should not render a caption")
	}
}
