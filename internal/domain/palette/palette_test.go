package palette

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/window"
)

type stubAsker struct {
	prompts []string
}

func (s *stubAsker) Quick(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return "answer: " + prompt, nil
}

type mockAsker struct {
	mock.Mock
}

func (m *mockAsker) Quick(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestSearch(t *testing.T) {
	p := New(&stubAsker{})

	tests := []struct {
		query   string
		actions []window.View
		tools   []string
	}{
		{"", []window.View{window.ViewDashboard, window.ViewBuilder, window.ViewChat}, []string{"github", "vercel"}},
		{"ai", []window.View{window.ViewBuilder, window.ViewChat}, []string{}},
		{"DASH", []window.View{window.ViewDashboard}, []string{}},
		{"git", []window.View{}, []string{"github"}},
		{"zzz", []window.View{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := p.Search(tt.query)
			assert.False(t, res.AI)

			views := []window.View{}
			for _, a := range res.Actions {
				views = append(views, a.View)
			}
			tools := []string{}
			for _, tool := range res.Tools {
				tools = append(tools, tool.ID)
			}
			assert.Equal(t, tt.actions, views)
			assert.Equal(t, tt.tools, tools)
		})
	}
}

func TestSearchAIQuery(t *testing.T) {
	res := New(nil).Search("?  what is a goroutine ")

	assert.True(t, res.AI)
	assert.Equal(t, "what is a goroutine", res.Prompt)
	assert.Empty(t, res.Actions)
	assert.Empty(t, res.Tools)
}

func TestAsk(t *testing.T) {
	asker := &stubAsker{}
	p := New(asker)

	answer, err := p.Ask(context.Background(), "?ping")
	require.NoError(t, err)
	assert.Equal(t, "answer: ping", answer)
	assert.Equal(t, []string{"ping"}, asker.prompts)

	_, err = p.Ask(context.Background(), "ping")
	assert.ErrorIs(t, err, ErrNotAIQuery)

	_, err = p.Ask(context.Background(), "?   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Len(t, asker.prompts, 1)
}

func TestAskPropagatesBackendError(t *testing.T) {
	asker := new(mockAsker)
	asker.On("Quick", mock.Anything, "uptime").Return("", errors.New("backend down")).Once()

	_, err := New(asker).Ask(context.Background(), "? uptime")
	assert.EqualError(t, err, "backend down")
	asker.AssertExpectations(t)
}
