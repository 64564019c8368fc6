package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/memorygym-backend/internal/app"
	"github.com/heartmarshall/memorygym-backend/internal/auth"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

func newCentersCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "centers SUBJECT",
		Short: "Show how many cards sit in each box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.resolveSubject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			centers, err := e.study.TrainingCenters(cmd.Context(), s.ID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BOX\tINTERVAL\tCARDS")
			for _, c := range centers {
				fmt.Fprintf(tw, "%d\t%dd\t%d\n", c.Level, c.IntervalDays, c.CardCount)
			}
			return tw.Flush()
		},
	}
}

func newStatsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals and recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.study.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sessions: %d\ncards reviewed: %d\ncorrect: %d\nincorrect: %d\naccuracy: %.0f%%\n",
				st.TotalSessions, st.TotalCards, st.TotalCorrect, st.TotalIncorrect, st.Accuracy*100)
			if len(st.RecentSessions) == 0 {
				return nil
			}

			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COMPLETED\tMODE\tCARDS\tCORRECT\tDURATION")
			for _, s := range st.RecentSessions {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
					formatTime(&s.CompletedAt), s.Mode, s.TotalCards, s.CorrectCount, s.Duration().Round(time.Second))
			}
			return tw.Flush()
		},
	}
}

func newTokenCmd(e *env) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:         "token",
		Short:       "Print an access token for the HTTP API",
		Long:        "token signs an access token for the configured user with auth.jwt_secret, for use against a development server.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(e.cfg.Auth.JWTSecret) < 32 {
				return errors.New("auth.jwt_secret (AUTH_JWT_SECRET) must be set to at least 32 characters")
			}
			userID, _ := ctxutil.UserIDFromCtx(cmd.Context())
			if ttl <= 0 {
				ttl = e.cfg.Auth.AccessTokenTTL
			}

			token, err := auth.NewJWTManager(e.cfg.Auth.JWTSecret, e.cfg.Auth.JWTIssuer, ttl).GenerateAccessToken(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to auth.access_token_ttl)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the build version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "memorygym", app.BuildVersion())
			return nil
		},
	}
}
