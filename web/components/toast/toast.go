// Package toast renders notification toasts for HTMX swaps.
package toast

import twmerge "github.com/Oudwins/tailwind-merge-go"

type Variant string

const (
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
	VariantInfo    Variant = "info"
)

// ParseVariant maps a loose name onto a Variant. "destructive" is an alias
// of error; anything unknown is success.
func ParseVariant(s string) Variant {
	switch s {
	case "error", "destructive":
		return VariantError
	case "warning":
		return VariantWarning
	case "info":
		return VariantInfo
	default:
		return VariantSuccess
	}
}

type Props struct {
	Title       string
	Description string
	Variant     Variant
	// Duration is the auto-dismiss delay in milliseconds; 0 keeps the toast.
	Duration    int
	Dismissible bool
	Class       string
}

var variantClasses = map[Variant]string{
	VariantSuccess: "border-green-500 bg-green-50 text-green-900",
	VariantError:   "border-red-500 bg-red-50 text-red-900",
	VariantWarning: "border-yellow-500 bg-yellow-50 text-yellow-900",
	VariantInfo:    "border-blue-500 bg-blue-50 text-blue-900",
}

func (p Props) variant() Variant {
	if p.Variant == "" {
		return VariantSuccess
	}
	return p.Variant
}

// class merges the base, variant and caller classes; caller classes win.
func (p Props) class() string {
	return twmerge.Merge(
		"fixed bottom-4 right-4 z-50 w-80 rounded-md border-l-4 p-4 shadow-lg",
		variantClasses[p.variant()],
		p.Class,
	)
}

func (p Props) role() string {
	if p.variant() == VariantError {
		return "alert"
	}
	return "status"
}
