package palette

import (
	"context"
	"errors"
	"strings"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/window"
)

// AIPrefix marks a query as a question for the oracle
const AIPrefix = "?"

var (
	// ErrNotAIQuery is returned by Ask for queries without the AI prefix
	ErrNotAIQuery = errors.New("query is not an AI query")
	// ErrEmptyPrompt is returned by Ask when nothing follows the prefix
	ErrEmptyPrompt = errors.New("empty AI prompt")
)

// Action opens a panel application
type Action struct {
	Name string      `json:"name"`
	View window.View `json:"view"`
}

// Tool is a reference entry from the tools library
type Tool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// Result is what the palette shows for a query
type Result struct {
	Query   string   `json:"query"`
	AI      bool     `json:"ai"`
	Prompt  string   `json:"prompt,omitempty"`
	Actions []Action `json:"actions"`
	Tools   []Tool   `json:"tools"`
}

// Asker answers quick questions
type Asker interface {
	Quick(ctx context.Context, prompt string) (string, error)
}

// Palette filters the launchable actions and tools
type Palette struct {
	actions []Action
	tools   []Tool
	asker   Asker
}

// New creates a palette with the stock actions and tools
func New(asker Asker) *Palette {
	return &Palette{
		actions: DefaultActions(),
		tools:   DefaultTools(),
		asker:   asker,
	}
}

// DefaultActions lists the panel launchers
func DefaultActions() []Action {
	return []Action{
		{Name: "Open ZERO HUB Dashboard", View: window.ViewDashboard},
		{Name: "Launch AI Site Builder", View: window.ViewBuilder},
		{Name: "Start AI Chat", View: window.ViewChat},
	}
}

// DefaultTools lists the tools library
func DefaultTools() []Tool {
	return []Tool{
		{
			ID:          "github",
			Name:        "GitHub",
			Category:    "Development",
			Description: "A provider of Internet hosting for software development and version control using Git.",
			Link:        "https://github.com",
		},
		{
			ID:          "vercel",
			Name:        "Vercel",
			Category:    "Deployment",
			Description: "A cloud platform for static sites and Serverless Functions that fits perfectly with your workflow.",
			Link:        "https://vercel.com",
		},
	}
}

// Search filters actions and tools by case-insensitive substring. A query
// with the AI prefix yields no matches, only the prompt to ask.
func (p *Palette) Search(query string) Result {
	res := Result{Query: query, Actions: []Action{}, Tools: []Tool{}}

	if prompt, ok := strings.CutPrefix(query, AIPrefix); ok {
		res.AI = true
		res.Prompt = strings.TrimSpace(prompt)
		return res
	}

	needle := strings.ToLower(query)
	for _, a := range p.actions {
		if strings.Contains(strings.ToLower(a.Name), needle) {
			res.Actions = append(res.Actions, a)
		}
	}
	for _, t := range p.tools {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			res.Tools = append(res.Tools, t)
		}
	}
	return res
}

// Ask sends an AI query to the oracle in quick-answer mode
func (p *Palette) Ask(ctx context.Context, query string) (string, error) {
	res := p.Search(query)
	if !res.AI {
		return "", ErrNotAIQuery
	}
	if res.Prompt == "" {
		return "", ErrEmptyPrompt
	}
	return p.asker.Quick(ctx, res.Prompt)
}
