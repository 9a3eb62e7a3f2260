package services

import (
	"fmt"
	"strings"

	"delaynotify/internal/core/domain/model/traffic"
)

// MessageInput carries the structured facts a delay message is composed from.
type MessageInput struct {
	CustomerName string            `json:"customerName"`
	Origin       string            `json:"origin"`
	Destination  string            `json:"destination"`
	DelayMinutes int               `json:"delayMinutes"`
	Condition    traffic.Condition `json:"condition"`
}

// FallbackMessage renders the templated delay message. It never returns an
// empty string, whatever the input.
func FallbackMessage(in MessageInput) string {
	var b strings.Builder

	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		name = "customer"
	}
	fmt.Fprintf(&b, "Hello %s, ", name)

	route := routeLabel(in.Origin, in.Destination)
	if route != "" {
		fmt.Fprintf(&b, "your delivery from %s ", route)
	} else {
		b.WriteString("your delivery ")
	}

	fmt.Fprintf(&b, "is expected to arrive about %s late", minutesLabel(in.DelayMinutes))
	if in.Condition != "" {
		fmt.Fprintf(&b, " due to %s traffic", in.Condition)
	}
	b.WriteString(". We apologise for the inconvenience and will keep you updated.")

	return b.String()
}

func routeLabel(origin, destination string) string {
	origin, destination = strings.TrimSpace(origin), strings.TrimSpace(destination)
	switch {
	case origin != "" && destination != "":
		return origin + " to " + destination
	case destination != "":
		return "your depot to " + destination
	default:
		return ""
	}
}

func minutesLabel(m int) string {
	if m < 0 {
		m = 0
	}
	if m == 1 {
		return "1 minute"
	}
	if m >= 120 && m%60 == 0 {
		return fmt.Sprintf("%d hours", m/60)
	}
	return fmt.Sprintf("%d minutes", m)
}
