// Package payload turns typed user input into the canonical string that gets
// encoded into a QR symbol, and decides whether a draft input is complete
// enough to encode.
package payload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedType is returned when a caller names a payload type outside
// the closed set of supported types.
var ErrUnsupportedType = errors.New("unsupported payload type")

// Type identifies a payload variant.
type Type string

const (
	TypeText  Type = "text"
	TypeURL   Type = "url"
	TypeEmail Type = "email"
	TypePhone Type = "phone"
	TypeSMS   Type = "sms"
	TypeWiFi  Type = "wifi"
)

// Types lists every supported payload type in UI order.
var Types = []Type{TypeText, TypeURL, TypeEmail, TypePhone, TypeSMS, TypeWiFi}

// ParseType maps a loose type name onto a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}

// Request is one of Text, URL, Email, Phone, SMS or WiFi.
type Request interface {
	Type() Type
	sealed()
}

// Text is free-form text.
type Text struct {
	Value string
}

// URL is a web address. A missing scheme defaults to https.
type URL struct {
	Value string
}

// Email builds a mailto: link. Subject and Body are optional.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Phone builds a tel: link.
type Phone struct {
	Number string
}

// SMS builds an sms: link with an optional prefilled message.
type SMS struct {
	Number  string
	Message string
}

// WiFi builds a network join payload.
type WiFi struct {
	SSID     string
	Password string
	Security string // WPA, WEP or nopass; empty means WPA
	Hidden   bool
	// Escape backslash-escapes separator characters in SSID and Password.
	// Off by default so payloads stay byte-compatible with the web UI.
	Escape bool
}

func (Text) Type() Type  { return TypeText }
func (URL) Type() Type   { return TypeURL }
func (Email) Type() Type { return TypeEmail }
func (Phone) Type() Type { return TypePhone }
func (SMS) Type() Type   { return TypeSMS }
func (WiFi) Type() Type  { return TypeWiFi }

func (Text) sealed()  {}
func (URL) sealed()   {}
func (Email) sealed() {}
func (Phone) sealed() {}
func (SMS) sealed()   {}
func (WiFi) sealed()  {}

// Fields is a flat bag of form values, as delivered by query strings, HTML
// forms or CLI flags.
type Fields map[string]string

// FieldKeys lists every key Build reads, across all types.
var FieldKeys = []string{
	"text", "url",
	"to", "subject", "body",
	"number", "message",
	"ssid", "password", "security", "hidden", "escape",
}

// Build creates the Request variant for t from loose form fields. Only the
// fields relevant to t are read; everything else is ignored.
//
// Recognised keys per type:
//
//	text:  text
//	url:   url
//	email: to, subject, body
//	phone: number
//	sms:   number, message
//	wifi:  ssid, password, security, hidden, escape
func Build(t Type, f Fields) (Request, error) {
	switch t {
	case TypeText:
		return Text{Value: f["text"]}, nil
	case TypeURL:
		return URL{Value: f["url"]}, nil
	case TypeEmail:
		return Email{To: f["to"], Subject: f["subject"], Body: f["body"]}, nil
	case TypePhone:
		return Phone{Number: f["number"]}, nil
	case TypeSMS:
		return SMS{Number: f["number"], Message: f["message"]}, nil
	case TypeWiFi:
		return WiFi{
			SSID:     f["ssid"],
			Password: f["password"],
			Security: f["security"],
			Hidden:   parseBool(f["hidden"]),
			Escape:   parseBool(f["escape"]),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, string(t))
	}
}

// parseBool accepts HTML checkbox values in addition to strconv's set.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "on" || s == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
