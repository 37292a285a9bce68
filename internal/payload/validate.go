package payload

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// minPhoneLength is a deliberately loose length check, not locale aware.
const minPhoneLength = 10

// maxURLLength caps URL input to avoid abuse.
const maxURLLength = 4096

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldState classifies a single input field for styling.
type FieldState string

const (
	FieldEmpty   FieldState = "empty"
	FieldValid   FieldState = "valid"
	FieldInvalid FieldState = "invalid"
)

// Report is the outcome of Check: the overall verdict plus a per-field
// classification the UI may use to style inputs. Only fields that carry a
// constraint appear in Fields.
type Report struct {
	Type   Type                  `json:"type"`
	Valid  bool                  `json:"valid"`
	Fields map[string]FieldState `json:"fields"`
}

// Valid reports whether r is well-formed enough to encode.
func Valid(r Request) bool {
	return Check(r).Valid
}

// Check validates r and classifies its constrained field. It never panics;
// a nil request is reported invalid.
func Check(r Request) Report {
	switch v := r.(type) {
	case Text:
		return single(TypeText, "text", v.Value, isNonEmpty(v.Value))
	case URL:
		return single(TypeURL, "url", v.Value, IsValidURL(v.Value))
	case Email:
		return single(TypeEmail, "to", v.To, IsValidEmail(v.To))
	case Phone:
		return single(TypePhone, "number", v.Number, isPhoneLike(v.Number))
	case SMS:
		return single(TypeSMS, "number", v.Number, isPhoneLike(v.Number))
	case WiFi:
		return single(TypeWiFi, "ssid", v.SSID, isNonEmpty(v.SSID))
	default:
		return Report{Fields: map[string]FieldState{}}
	}
}

func single(t Type, field, raw string, ok bool) Report {
	return Report{
		Type:   t,
		Valid:  ok,
		Fields: map[string]FieldState{field: classify(raw, ok)},
	}
}

// classify leaves blank fields unstyled, so a fresh form shows no errors.
func classify(raw string, ok bool) FieldState {
	if strings.TrimSpace(raw) == "" {
		return FieldEmpty
	}
	if ok {
		return FieldValid
	}
	return FieldInvalid
}

func isNonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

func isPhoneLike(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= minPhoneLength
}

// IsValidURL reports whether s parses as an absolute http or https URL with
// a host once https:// is assumed for scheme-less input.
func IsValidURL(s string) bool {
	v := strings.TrimSpace(s)
	if v == "" || len(v) > maxURLLength {
		return false
	}
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// IsValidEmail checks the minimal local@domain.tld shape.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
