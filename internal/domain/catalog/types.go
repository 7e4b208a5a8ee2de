package catalog

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/terminal"
)

var (
	// ErrNotFound is returned when no entry has the requested id
	ErrNotFound = errors.New("simulation not found")
	// ErrInvalidEntry is returned for entries missing required fields
	ErrInvalidEntry = errors.New("invalid catalog entry")
	// ErrReservedID is returned when a simulation file reuses a built-in id
	ErrReservedID = errors.New("id is reserved by a built-in simulation")
)

// Kind groups entries the way the desktop presents them
type Kind string

const (
	KindAcademy       Kind = "academy"
	KindVulnerability Kind = "vulnerability"
)

// Entry is one launchable simulation with its presentation metadata
type Entry struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Kind        Kind            `json:"kind"`
	Description string          `json:"description"`
	Path        string          `json:"path,omitempty"`
	Objectives  []string        `json:"objectives,omitempty"`
	CVE         string          `json:"cve,omitempty"`
	Severity    string          `json:"severity,omitempty"`
	Simulation  terminal.Script `json:"simulation"`
	Source      string          `json:"source"`

	program *terminal.Program
}

// Program returns the compiled simulation
func (e Entry) Program() *terminal.Program {
	return e.program
}

// fileBacked reports whether the entry was loaded from a simulation file
func (e Entry) fileBacked() bool {
	return e.Source != "" && e.Source != builtinSource
}

func (e *Entry) validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}
	switch e.Kind {
	case KindAcademy, KindVulnerability:
	case "":
		e.Kind = KindAcademy
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidEntry, e.ID, e.Kind)
	}
	if e.Simulation.Scenario == "" {
		return fmt.Errorf("%w: %s: scenario is required", ErrInvalidEntry, e.ID)
	}
	if e.Title == "" {
		e.Title = e.ID
	}
	return nil
}
