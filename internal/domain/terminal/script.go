package terminal

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/pattern"
)

// ErrInvalidOutput is returned when a step output is neither a string nor a
// list of strings.
var ErrInvalidOutput = errors.New("step output must be a string or a list of strings")

// Script is a simulation: a scenario banner plus scripted command steps
type Script struct {
	Scenario string `json:"scenario"`
	Steps    []Step `json:"script"`
}

// Step is one scripted command
type Step struct {
	Pattern string `json:"command"`
	Output  Output `json:"output"`
	// DelayMS overrides the default response delay, in milliseconds
	DelayMS *int `json:"delay,omitempty"`
}

// Output is the canned response of a step, one transcript line per element
type Output []string

// UnmarshalJSON accepts a single string or an array of strings
func (o *Output) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := OutputFrom(raw)
	if err != nil {
		return err
	}
	*o = out
	return nil
}

// OutputFrom normalizes a decoded value (string, []string or []any of
// strings) into an Output.
func OutputFrom(v any) (Output, error) {
	switch val := v.(type) {
	case string:
		return Output{val}, nil
	case []string:
		return Output(append([]string(nil), val...)), nil
	case []any:
		out := make(Output, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: got element %T", ErrInvalidOutput, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidOutput, v)
	}
}

func (s Step) delay(def time.Duration) time.Duration {
	if s.DelayMS == nil {
		return def
	}
	if *s.DelayMS < 0 {
		return 0
	}
	return time.Duration(*s.DelayMS) * time.Millisecond
}

// Program is a script with its step patterns compiled. It is immutable and
// safe to share between sessions.
type Program struct {
	script   Script
	matchers []*pattern.Matcher
}

// Compile compiles every step pattern. A malformed pattern rejects the
// whole script.
func Compile(script Script) (*Program, error) {
	patterns := make([]string, len(script.Steps))
	for i, step := range script.Steps {
		patterns[i] = step.Pattern
	}

	matchers, err := pattern.CompileAll(patterns)
	if err != nil {
		return nil, fmt.Errorf("compile script %q: %w", script.Scenario, err)
	}

	steps := make([]Step, len(script.Steps))
	copy(steps, script.Steps)
	script.Steps = steps

	return &Program{script: script, matchers: matchers}, nil
}

// Scenario returns the banner text
func (p *Program) Scenario() string { return p.script.Scenario }

// Script returns a copy of the source script
func (p *Program) Script() Script {
	s := p.script
	s.Steps = make([]Step, len(p.script.Steps))
	copy(s.Steps, p.script.Steps)
	return s
}

// Resolve returns the first step, in script order, whose pattern matches
// the whole input.
func (p *Program) Resolve(input string) (Step, pattern.Result, bool) {
	for i, m := range p.matchers {
		if res, ok := m.Match(input); ok {
			return p.script.Steps[i], res, true
		}
	}
	return Step{}, pattern.Result{}, false
}
