// Package tui renders a training session in the terminal. The model only
// projects the session phase; every transition goes through the study service.
package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/study"
)

// sessionDriver is the part of the study service the UI drives.
type sessionDriver interface {
	SubmitAnswer(ctx context.Context, input study.SubmitAnswerInput) (study.AnswerResult, study.SessionView, error)
	NextCard(ctx context.Context, sessionID uuid.UUID) (study.SessionView, error)
	AbandonSession(ctx context.Context, sessionID uuid.UUID) error
}

type answeredMsg struct {
	result study.AnswerResult
	view   study.SessionView
}

type advancedMsg struct {
	view study.SessionView
}

type abandonedMsg struct{}

type errMsg struct {
	err error
}

// Model is the bubbletea model of one training session.
type Model struct {
	ctx     context.Context
	svc     sessionDriver
	title   string
	view    study.SessionView
	last    *study.AnswerResult
	input   textinput.Model
	err     error
	busy    bool
	aborted bool
}

// New builds a model for a session that has already been started.
func New(ctx context.Context, svc sessionDriver, title string, view study.SessionView) Model {
	ti := textinput.New()
	ti.Placeholder = "type the answer"
	ti.CharLimit = 1000
	ti.Prompt = "> "
	if view.Phase == domain.SessionPhasePresenting {
		ti.Focus()
	}

	return Model{ctx: ctx, svc: svc, title: title, view: view, input: ti}
}

// Session returns the latest session view.
func (m Model) Session() study.SessionView { return m.view }

// Aborted reports whether the user left before the session completed.
func (m Model) Aborted() bool { return m.aborted }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case answeredMsg:
		m.busy = false
		m.view = msg.view
		m.last = &msg.result
		m.input.Reset()
		m.input.Blur()
		return m, nil

	case advancedMsg:
		m.busy = false
		m.view = msg.view
		m.last = nil
		if m.view.Phase == domain.SessionPhaseCompleted {
			return m, nil
		}
		return m, m.input.Focus()

	case abandonedMsg:
		return m, tea.Quit

	case errMsg:
		m.busy = false
		m.err = msg.err
		if m.aborted {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	if m.view.Phase == domain.SessionPhasePresenting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" || key == "esc" {
		if m.view.Phase != domain.SessionPhaseCompleted {
			m.aborted = true
			return m, m.abandon()
		}
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.view.Phase {
	case domain.SessionPhasePresenting:
		if key == "enter" {
			m.busy = true
			m.err = nil
			return m, m.submit(m.input.Value())
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case domain.SessionPhaseEvaluated:
		if key == "enter" || key == "space" {
			m.busy = true
			m.err = nil
			return m, m.next()
		}

	case domain.SessionPhaseCompleted:
		if key == "enter" || key == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) submit(answer string) tea.Cmd {
	id := m.view.ID
	return func() tea.Msg {
		result, view, err := m.svc.SubmitAnswer(m.ctx, study.SubmitAnswerInput{SessionID: id, Answer: answer})
		if err != nil {
			return errMsg{err}
		}
		return answeredMsg{result: result, view: view}
	}
}

func (m Model) next() tea.Cmd {
	id := m.view.ID
	return func() tea.Msg {
		view, err := m.svc.NextCard(m.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return advancedMsg{view: view}
	}
}

func (m Model) abandon() tea.Cmd {
	id := m.view.ID
	return func() tea.Msg {
		if err := m.svc.AbandonSession(m.ctx, id); err != nil {
			return errMsg{err}
		}
		return abandonedMsg{}
	}
}

func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m Model) render() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(m.progress()))
	b.WriteString("\n\n")

	switch m.view.Phase {
	case domain.SessionPhasePresenting:
		b.WriteString(cardStyle.Render(m.view.Front))
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("enter: submit · esc: quit"))

	case domain.SessionPhaseEvaluated:
		b.WriteString(cardStyle.Render(m.view.Front))
		b.WriteString("\n\n")
		if m.last != nil {
			b.WriteString(renderResult(*m.last))
			b.WriteString("\n\n")
		}
		b.WriteString(hintStyle.Render("enter: next card · esc: quit"))

	case domain.SessionPhaseCompleted:
		b.WriteString(renderSummary(m.view.Summary()))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("enter: exit"))
	}

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) progress() string {
	return fmt.Sprintf("card %d/%d · ✓ %d · ✗ %d",
		min(m.view.Cursor+1, m.view.Total), m.view.Total, m.view.Correct, m.view.Incorrect)
}

func renderResult(r study.AnswerResult) string {
	if r.Outcome == domain.OutcomeCorrect {
		return correctStyle.Render("Correct!") + dimStyle.Render(fmt.Sprintf("  box %d → %d, next review %s",
			r.PrevBox, r.NewBox, r.NextReview.Local().Format("Jan 2")))
	}
	return incorrectStyle.Render("Incorrect.") + " Expected: " + r.Expected +
		dimStyle.Render(fmt.Sprintf("  back to box %d", r.NewBox))
}

func renderSummary(s domain.SessionSummary) string {
	if s.Total == 0 {
		return "Nothing to review right now."
	}
	return fmt.Sprintf("Session complete: %d cards, %s correct, %s incorrect (%.0f%%)",
		s.Total,
		correctStyle.Render(fmt.Sprint(s.Correct)),
		incorrectStyle.Render(fmt.Sprint(s.Incorrect)),
		s.Accuracy()*100)
}
