package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/subject"
)

func newSubjectCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage subjects",
	}

	var description string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := subject.CreateSubjectInput{Name: args[0]}
			if description != "" {
				input.Description = &description
			}
			s, err := e.subjects.CreateSubject(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created subject %q (%s)\n", s.Name, s.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "Optional description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subjects, err := e.subjects.ListSubjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(subjects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no subjects yet, create one with: memorygym subject add NAME")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCARDS\tLAST STUDIED")
			for _, s := range subjects {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.Name, s.CardCount, formatTime(s.LastStudied))
			}
			return tw.Flush()
		},
	}

	remove := &cobra.Command{
		Use:   "delete SUBJECT",
		Short: "Delete a subject with its cards and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.resolveSubject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := e.subjects.DeleteSubject(cmd.Context(), s.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted subject %q\n", s.Name)
			return nil
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

// resolveSubject finds a subject of the current user by id or by exact name.
func (e *env) resolveSubject(ctx context.Context, ref string) (domain.Subject, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return e.subjects.GetSubject(ctx, id)
	}

	subjects, err := e.subjects.ListSubjects(ctx)
	if err != nil {
		return domain.Subject{}, err
	}
	name := strings.TrimSpace(ref)
	for _, s := range subjects {
		if s.Name == name {
			return s, nil
		}
	}
	return domain.Subject{}, fmt.Errorf("subject %q: %w", name, domain.ErrNotFound)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
