package components

import "github.com/cristianadrielbraun/qrstudio/internal/payload"

// TypeOption is one entry of the payload type selector.
type TypeOption struct {
	Value string
	Label string
}

var typeLabels = map[payload.Type]string{
	payload.TypeText:  "Text",
	payload.TypeURL:   "URL",
	payload.TypeEmail: "Email",
	payload.TypePhone: "Phone",
	payload.TypeSMS:   "SMS",
	payload.TypeWiFi:  "WiFi",
}

// TypeOptions lists the selector entries in display order.
func TypeOptions() []TypeOption {
	out := make([]TypeOption, 0, len(payload.Types))
	for _, t := range payload.Types {
		out = append(out, TypeOption{Value: string(t), Label: typeLabels[t]})
	}
	return out
}
