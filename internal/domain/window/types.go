package window

import (
	"errors"
	"fmt"
)

// ErrUnknownView is returned when parsing a view name the hub does not host
var ErrUnknownView = errors.New("unknown view")

// View names the panel application a window hosts. The manager treats it
// as an opaque token.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewBuilder   View = "builder"
	ViewTools     View = "tools"
	ViewChat      View = "chat"
)

// Views lists the panel applications known to the hub
func Views() []View {
	return []View{ViewDashboard, ViewBuilder, ViewTools, ViewChat}
}

// ParseView validates a view name
func ParseView(s string) (View, error) {
	for _, v := range Views() {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Record is one open window
type Record struct {
	ID         int  `json:"id"`
	View       View `json:"view"`
	StackOrder int  `json:"stack_order"`
}

// Stats summarizes the window collection
type Stats struct {
	Open      int  `json:"open"`
	Allocated int  `json:"allocated"`
	FocusedID *int `json:"focused_id,omitempty"`
}
