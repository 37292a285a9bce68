package payload

import (
	"net/url"
	"strings"
)

// Encode returns the canonical payload string for r. It never fails: callers
// are expected to run Valid first, and malformed input simply produces a
// syntactically valid but empty-looking payload. A nil request encodes to "".
func Encode(r Request) string {
	switch v := r.(type) {
	case Text:
		return strings.TrimSpace(v.Value)
	case URL:
		return withDefaultScheme(strings.TrimSpace(v.Value))
	case Email:
		return encodeEmail(v)
	case Phone:
		return "tel:" + strings.TrimSpace(v.Number)
	case SMS:
		out := "sms:" + strings.TrimSpace(v.Number)
		if msg := strings.TrimSpace(v.Message); msg != "" {
			out += "?body=" + escapeComponent(msg)
		}
		return out
	case WiFi:
		return encodeWiFi(v)
	default:
		return ""
	}
}

// withDefaultScheme prefixes https:// unless the value already carries an
// http or https scheme.
func withDefaultScheme(v string) string {
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return v
	}
	return "https://" + v
}

func encodeEmail(e Email) string {
	out := "mailto:" + strings.TrimSpace(e.To)

	var params []string
	if s := strings.TrimSpace(e.Subject); s != "" {
		params = append(params, "subject="+escapeComponent(s))
	}
	if b := strings.TrimSpace(e.Body); b != "" {
		params = append(params, "body="+escapeComponent(b))
	}
	if len(params) > 0 {
		out += "?" + strings.Join(params, "&")
	}
	return out
}

func encodeWiFi(w WiFi) string {
	security := strings.TrimSpace(w.Security)
	if security == "" {
		security = "WPA"
	}
	ssid := strings.TrimSpace(w.SSID)
	password := strings.TrimSpace(w.Password)
	if w.Escape {
		ssid = escapeWiFiField(ssid)
		password = escapeWiFiField(password)
	}
	hidden := "false"
	if w.Hidden {
		hidden = "true"
	}

	var b strings.Builder
	b.WriteString("WIFI:T:")
	b.WriteString(security)
	b.WriteString(";S:")
	b.WriteString(ssid)
	b.WriteString(";P:")
	b.WriteString(password)
	b.WriteString(";H:")
	b.WriteString(hidden)
	b.WriteString(";;")
	return b.String()
}

var wifiEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	`:`, `\:`,
	`"`, `\"`,
)

// escapeWiFiField applies the backslash escaping used by the WiFi network
// config QR convention.
func escapeWiFiField(s string) string {
	return wifiEscaper.Replace(s)
}

// componentUnescaper undoes url.QueryEscape for the characters a URI
// component leaves as is, and spells spaces as %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escapeComponent percent-encodes s for use inside a URI query value.
// Letters, digits and -_.!~*'() pass through; spaces become %20 rather than
// '+', which mail and SMS clients expect.
func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
