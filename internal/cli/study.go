package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/study"
	"github.com/heartmarshall/memorygym-backend/internal/tui"
)

func newStudyCmd(e *env) *cobra.Command {
	var (
		level int
		plain bool
	)
	cmd := &cobra.Command{
		Use:   "study SUBJECT",
		Short: "Review the cards of a subject that are due now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := study.StartSessionInput{Mode: domain.SelectionModeStudy}
			if cmd.Flags().Changed("level") {
				input.Level = &level
			}
			return e.runSession(cmd, args[0], input, plain)
		},
	}
	cmd.Flags().IntVarP(&level, "level", "l", 0, "Only review due cards of this box (1-5)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Line-based prompts instead of the full-screen UI")
	return cmd
}

func newTrainCmd(e *env) *cobra.Command {
	var (
		level   int
		shuffle bool
		plain   bool
	)
	cmd := &cobra.Command{
		Use:   "train SUBJECT",
		Short: "Practice every card of one box regardless of due time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := study.StartSessionInput{Mode: domain.SelectionModeTraining, Level: &level}
			if cmd.Flags().Changed("shuffle") {
				input.Shuffle = &shuffle
			}
			return e.runSession(cmd, args[0], input, plain)
		},
	}
	cmd.Flags().IntVarP(&level, "level", "l", 0, "Box to train (1-5)")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "Present the cards of the box in random order")
	cmd.Flags().BoolVar(&plain, "plain", false, "Line-based prompts instead of the full-screen UI")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func (e *env) runSession(cmd *cobra.Command, ref string, input study.StartSessionInput, plain bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	s, err := e.resolveSubject(ctx, ref)
	if err != nil {
		return err
	}
	input.SubjectID = s.ID

	view, err := e.study.StartSession(ctx, input)
	if err != nil {
		return err
	}
	if view.Total == 0 {
		fmt.Fprintf(out, "nothing to review in %q right now\n", s.Name)
		return nil
	}

	title := s.Name
	if input.Level != nil {
		title = fmt.Sprintf("%s, box %d", s.Name, *input.Level)
	}

	var aborted bool
	if plain {
		view, aborted, err = runPlain(ctx, e.study, view, cmd.InOrStdin(), out)
	} else {
		view, aborted, err = tui.Run(ctx, e.study, title, view, cmd.InOrStdin(), out)
	}
	if err != nil {
		return err
	}
	if aborted {
		fmt.Fprintln(out, "session abandoned, answers given so far are kept")
		return nil
	}

	sum := view.Summary()
	fmt.Fprintf(out, "done: %d/%d correct (%.0f%%)\n", sum.Correct, sum.Total, sum.Accuracy()*100)
	return nil
}

// sessionRunner is the part of the study service a session loop drives.
type sessionRunner interface {
	SubmitAnswer(ctx context.Context, input study.SubmitAnswerInput) (study.AnswerResult, study.SessionView, error)
	NextCard(ctx context.Context, sessionID uuid.UUID) (study.SessionView, error)
	AbandonSession(ctx context.Context, sessionID uuid.UUID) error
}

// runPlain asks one card per line. End of input abandons the session.
func runPlain(ctx context.Context, svc sessionRunner, view study.SessionView, in io.Reader, out io.Writer) (study.SessionView, bool, error) {
	scanner := bufio.NewScanner(in)

	for view.Phase != domain.SessionPhaseCompleted {
		if err := ctx.Err(); err != nil {
			return view, true, abandon(ctx, svc, view)
		}

		if view.Phase == domain.SessionPhaseEvaluated {
			next, err := svc.NextCard(ctx, view.ID)
			if err != nil {
				return view, false, err
			}
			view = next
			continue
		}

		fmt.Fprintf(out, "[%d/%d] %s\n> ", view.Cursor+1, view.Total, view.Front)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				return view, true, fmt.Errorf("read answer: %w", err)
			}
			return view, true, abandon(ctx, svc, view)
		}

		res, next, err := svc.SubmitAnswer(ctx, study.SubmitAnswerInput{SessionID: view.ID, Answer: scanner.Text()})
		if err != nil {
			return view, false, err
		}
		view = next

		if res.Outcome == domain.OutcomeCorrect {
			fmt.Fprintf(out, "correct, box %d -> %d\n", res.PrevBox, res.NewBox)
		} else {
			fmt.Fprintf(out, "incorrect, expected %q, box %d -> %d\n", res.Expected, res.PrevBox, res.NewBox)
		}
	}
	return view, false, nil
}

func abandon(ctx context.Context, svc sessionRunner, view study.SessionView) error {
	if err := svc.AbandonSession(context.WithoutCancel(ctx), view.ID); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}
	return nil
}
