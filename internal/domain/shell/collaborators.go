package shell

import "github.com/GriffinCanCode/ZeroHub/backend/internal/domain/notify"

// Cue names a sound effect
type Cue string

const (
	CueOpen  Cue = "open"
	CueClose Cue = "close"
	CueClick Cue = "click"
	CueStart Cue = "start"
)

// SoundPlayer plays sound cues
type SoundPlayer interface {
	Play(cue Cue)
}

// SoundFunc adapts a function to SoundPlayer
type SoundFunc func(cue Cue)

// Play implements SoundPlayer
func (f SoundFunc) Play(cue Cue) { f(cue) }

// Notifier posts notification banners
type Notifier interface {
	Notify(n notify.Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n notify.Notification)

// Notify implements Notifier
func (f NotifierFunc) Notify(n notify.Notification) { f(n) }

// Key is a keyboard shortcut from the desktop
type Key struct {
	Key  string `json:"key"`
	Ctrl bool   `json:"ctrl"`
	Meta bool   `json:"meta"`
}
