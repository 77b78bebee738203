package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

type stubRetrieval struct {
	results []domain.FusedResult
	err     error
}

func (s *stubRetrieval) Initialize(_ context.Context) error { return nil }
func (s *stubRetrieval) Ready() bool                        { return true }

func (s *stubRetrieval) Search(_ context.Context, _ string, _ int) ([]domain.FusedResult, time.Duration, error) {
	return s.results, time.Millisecond, s.err
}

type stubAnswer struct {
	answer *domain.Answer
	err    error
}

func (s *stubAnswer) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	return s.answer, s.err
}

func newTestModel(ports Ports) Model {
	return New(context.Background(), ports)
}

func typeLine(m Model, line string) (Model, tea.Cmd) {
	m.input.SetValue(line)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func TestSubmitSearchPrefix(t *testing.T) {
	retrieval := &stubRetrieval{results: []domain.FusedResult{
		{Chunk: domain.Chunk{ID: "c1", Title: "Hypertension Outcomes", Year: 2021, Content: "text"}, FusedScore: 0.9},
	}}
	m := newTestModel(Ports{Retrieval: retrieval, Answer: &stubAnswer{}})

	m, cmd := typeLine(m, "/s blood pressure")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	msg := collectMsg(cmd)
	done, ok := msg.(searchDoneMsg)
	require.True(t, ok, "slash prefix routes to search even with an answer service")
	assert.Equal(t, "blood pressure", done.query)

	updated, _ := m.Update(done)
	m = updated.(Model)
	assert.False(t, m.busy)
	assert.Contains(t, m.View(), "Hypertension Outcomes")
	assert.Contains(t, m.View(), "(2021)")
}

func TestSubmitRoutesToAsk(t *testing.T) {
	answer := &stubAnswer{answer: &domain.Answer{
		Text:      "Yes, control reduces events.",
		Citations: []domain.Citation{{Title: "Hypertension Outcomes", Year: 2021}},
	}}
	m := newTestModel(Ports{Retrieval: &stubRetrieval{}, Answer: answer})

	m, cmd := typeLine(m, "does control reduce events?")
	require.NotNil(t, cmd)

	msg := collectMsg(cmd)
	done, ok := msg.(answerDoneMsg)
	require.True(t, ok)

	updated, _ := m.Update(done)
	m = updated.(Model)
	assert.Contains(t, m.View(), "Yes, control reduces events.")
	assert.Contains(t, m.View(), "Sources:")
}

func TestSubmitFallsBackToSearchWithoutAnswerService(t *testing.T) {
	m := newTestModel(Ports{Retrieval: &stubRetrieval{}})

	_, cmd := typeLine(m, "hypertension")
	require.NotNil(t, cmd)

	_, ok := collectMsg(cmd).(searchDoneMsg)
	assert.True(t, ok)
}

func TestErrorsLandInTranscript(t *testing.T) {
	m := newTestModel(Ports{Retrieval: &stubRetrieval{err: errors.New("embedding offline")}})

	m, cmd := typeLine(m, "/s anything")
	require.NotNil(t, cmd)

	updated, _ := m.Update(collectMsg(cmd))
	m = updated.(Model)
	assert.False(t, m.busy)
	assert.Contains(t, m.View(), "embedding offline")
}

func TestQuitWords(t *testing.T) {
	m := newTestModel(Ports{Retrieval: &stubRetrieval{}})

	_, cmd := typeLine(m, "quit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestEmptyLineIgnored(t *testing.T) {
	m := newTestModel(Ports{Retrieval: &stubRetrieval{}})

	m, cmd := typeLine(m, "   ")
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, "one two", flatten(" one \n two ", 40))
	assert.Equal(t, "alpha beta...", flatten("alpha beta gamma delta", 12))
}

// collectMsg runs a command, unwrapping a batch down to the first
// shell message and skipping spinner ticks.
func collectMsg(cmd tea.Cmd) tea.Msg {
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return msg
	}
	for _, c := range batch {
		switch inner := c().(type) {
		case searchDoneMsg, answerDoneMsg, errMsg:
			return inner
		}
	}
	return nil
}
