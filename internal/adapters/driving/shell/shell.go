// Package shell implements the interactive medsearch session: a
// single prompt that searches the library or asks the LLM, with
// results rendered inline.
package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driving"
)

const searchTopK = 5

var (
	promptStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "39"})
	titleStyle = lipgloss.NewStyle().Bold(true)
	metaStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "243", Dark: "247"})
	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "78"})
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "203"})
	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Ports holds the services the shell drives.
type Ports struct {
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
}

// Model is the bubbletea model for the interactive session.
type Model struct {
	ports Ports
	ctx   context.Context

	input   textinput.Model
	spinner spinner.Model
	busy    bool

	// transcript accumulates rendered turns, newest last.
	transcript []string
}

type searchDoneMsg struct {
	query   string
	results []domain.FusedResult
	elapsed time.Duration
}

type answerDoneMsg struct {
	question string
	answer   *domain.Answer
}

type errMsg struct{ err error }

// New creates a shell model.
func New(ctx context.Context, ports Ports) Model {
	input := textinput.New()
	input.Placeholder = "search, or ask a question (/s forces search, ctrl-c quits)"
	input.Prompt = promptStyle.Render("> ")
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ports:   ports,
		ctx:     ctx,
		input:   input,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			if line == "q" || line == "quit" || line == "exit" {
				return m, tea.Quit
			}
			m.input.SetValue("")
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.submit(line))
		}

	case searchDoneMsg:
		m.busy = false
		m.transcript = append(m.transcript, renderSearch(msg))
		return m, nil

	case answerDoneMsg:
		m.busy = false
		m.transcript = append(m.transcript, renderAnswer(msg))
		return m, nil

	case errMsg:
		m.busy = false
		m.transcript = append(m.transcript, errStyle.Render("error: ")+msg.err.Error())
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("medsearch"))
	b.WriteString(helpStyle.Render("  interactive session"))
	b.WriteString("\n\n")

	for _, turn := range m.transcript {
		b.WriteString(turn)
		b.WriteString("\n\n")
	}

	if m.busy {
		b.WriteString(m.spinner.View())
		b.WriteString(" working...\n")
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	return b.String()
}

// submit routes the line: "/s query" always searches, plain text asks
// when an answer service is available and searches otherwise.
func (m Model) submit(line string) tea.Cmd {
	if q, ok := strings.CutPrefix(line, "/s "); ok {
		return m.search(strings.TrimSpace(q))
	}
	if m.ports.Answer != nil {
		return m.ask(line)
	}
	return m.search(line)
}

func (m Model) search(query string) tea.Cmd {
	return func() tea.Msg {
		results, elapsed, err := m.ports.Retrieval.Search(m.ctx, query, searchTopK)
		if err != nil {
			return errMsg{err}
		}
		return searchDoneMsg{query: query, results: results, elapsed: elapsed}
	}
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.ports.Answer.Ask(m.ctx, question)
		if err != nil {
			return errMsg{err}
		}
		return answerDoneMsg{question: question, answer: answer}
	}
}

func renderSearch(msg searchDoneMsg) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(msg.query)
	b.WriteString("\n")

	if len(msg.results) == 0 {
		b.WriteString("No results found.")
		return b.String()
	}

	for i, r := range msg.results {
		title := r.Chunk.Title
		if title == "" {
			title = r.Chunk.ArticleID
		}
		b.WriteString(fmt.Sprintf("  [%d] %s", i+1, titleStyle.Render(title)))
		if r.Chunk.Year > 0 {
			b.WriteString(metaStyle.Render(fmt.Sprintf(" (%d)", r.Chunk.Year)))
		}
		b.WriteString(scoreStyle.Render(fmt.Sprintf("  %.3f", r.FusedScore)))
		b.WriteString("\n      ")
		b.WriteString(flatten(r.Chunk.Content, 160))
		b.WriteString("\n")
	}
	b.WriteString(metaStyle.Render(fmt.Sprintf("%d results in %s",
		len(msg.results), msg.elapsed.Round(time.Millisecond))))
	return b.String()
}

func renderAnswer(msg answerDoneMsg) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(msg.question)
	b.WriteString("\n")
	b.WriteString(msg.answer.Text)

	if len(msg.answer.Citations) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Sources:"))
		for _, c := range msg.answer.Citations {
			b.WriteString("\n  ")
			b.WriteString(c.Title)
			if c.Year > 0 {
				b.WriteString(fmt.Sprintf(" (%d)", c.Year))
			}
		}
	}
	return b.String()
}

// flatten collapses whitespace and truncates at a word boundary.
func flatten(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= limit {
		return text
	}
	cut := strings.LastIndex(text[:limit], " ")
	if cut <= 0 {
		cut = limit
	}
	return text[:cut] + "..."
}
