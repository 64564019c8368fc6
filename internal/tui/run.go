package tui

import (
	"context"
	"fmt"
	"io"

	tea "charm.land/bubbletea/v2"

	"github.com/heartmarshall/memorygym-backend/internal/service/study"
)

// Run drives the session interactively until it completes or the user quits.
// It returns the last session view and whether the session was abandoned.
func Run(ctx context.Context, svc sessionDriver, title string, view study.SessionView, in io.Reader, out io.Writer) (study.SessionView, bool, error) {
	p := tea.NewProgram(New(ctx, svc, title, view),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if err != nil {
		return view, true, fmt.Errorf("run session ui: %w", err)
	}
	m := final.(Model)
	return m.Session(), m.Aborted(), nil
}
