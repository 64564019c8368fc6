// Package cli implements the memorygym command-line client. It keeps cards
// in a local SQLite database and drives the same study service as the server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/memorygym-backend/internal/adapter/sqlite"
	"github.com/heartmarshall/memorygym-backend/internal/app"
	"github.com/heartmarshall/memorygym-backend/internal/config"
	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/persist"
	"github.com/heartmarshall/memorygym-backend/internal/service/study"
	"github.com/heartmarshall/memorygym-backend/internal/service/subject"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

// skipStore marks commands that run without opening the database.
const skipStore = "skip-store"

// closeTimeout bounds draining of pending card writes on exit.
const closeTimeout = 10 * time.Second

// env is the state shared by all commands of one invocation.
type env struct {
	cfg      *config.Config
	log      *slog.Logger
	store    *sqlite.Store
	writer   *persist.Writer
	subjects *subject.Service
	study    *study.Service
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "memorygym",
		Short:         "Leitner flashcards in the terminal",
		Long:          "memorygym keeps flashcards in five Leitner boxes and schedules each card by how well you know it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.open(cmd)
		},
	}

	root.PersistentFlags().String("db", "", "Path to the SQLite database (overrides MEMORYGYM_DB)")
	root.PersistentFlags().String("user", "", "User id owning the cards (overrides MEMORYGYM_USER_ID)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newSubjectCmd(e),
		newCardCmd(e),
		newStudyCmd(e),
		newTrainCmd(e),
		newCentersCmd(e),
		newStatsCmd(e),
		newTokenCmd(e),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line in args. Pending card writes are drained and
// the database is closed before it returns, also when the command failed.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	e := &env{}
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := errors.Join(root.ExecuteContext(ctx), e.close(ctx))
	if err != nil {
		fmt.Fprintln(errOut, "error:", describe(err))
	}
	return err
}

func (e *env) open(cmd *cobra.Command) error {
	cfg, err := config.LoadLocal()
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Local.DBPath = p
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.Local.UserID = u
	}

	logCfg := config.LogConfig{Level: "warn", Format: "text"}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		logCfg.Level = "debug"
	}
	e.cfg = cfg
	e.log = app.NewLogger(logCfg, cmd.ErrOrStderr())

	userID, err := uuid.Parse(cfg.Local.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", cfg.Local.UserID, err)
	}
	ctx := ctxutil.WithUserID(cmd.Context(), userID)
	cmd.SetContext(ctx)

	if cmd.Annotations[skipStore] != "" {
		return nil
	}

	store, err := sqlite.Open(ctx, cfg.Local.DBPath)
	if err != nil {
		return err
	}

	studyCfg, err := app.StudyConfig(cfg)
	if err != nil {
		_ = store.Close()
		return err
	}

	cards := store.Cards()
	subjects := store.Subjects()
	e.store = store
	e.writer = persist.NewWriter(e.log, cards, app.PersistConfig(cfg),
		persist.WithFailureHandler(func(perr domain.PersistenceError) {
			e.log.Error("card update lost", slog.String("card_id", perr.CardID.String()), slog.Int("attempts", perr.Attempts))
		}),
	)
	e.study = study.NewService(e.log, cards, subjects, store.Sessions(), e.writer, nil, store, studyCfg)
	e.subjects = subject.NewService(e.log, subjects, cards, store)
	return nil
}

func (e *env) close(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	var errs []error
	if err := e.writer.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush card writes: %w", err))
	}
	if st := e.writer.Stats(); st.Failed > 0 {
		errs = append(errs, fmt.Errorf("%d card updates could not be saved", st.Failed))
	}
	if err := e.store.Close(); err != nil {
		errs = append(errs, err)
	}
	e.store = nil
	return errors.Join(errs...)
}

// describe drops the wrapping context of validation errors, which already
// name the offending fields.
func describe(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}
