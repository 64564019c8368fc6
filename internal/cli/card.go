package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/memorygym-backend/internal/service/subject"
)

func newCardCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}

	add := &cobra.Command{
		Use:   "add SUBJECT FRONT BACK",
		Short: "Add a card to a subject",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.resolveSubject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c, err := e.subjects.CreateCard(cmd.Context(), subject.CreateCardInput{
				SubjectID: s.ID,
				Front:     args[1],
				Back:      args[2],
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added card %q to %q in box %d\n", c.Front, s.Name, c.BoxNumber)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list SUBJECT",
		Short: "List the cards of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.resolveSubject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cards, err := e.subjects.ListCards(cmd.Context(), s.ID)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%q has no cards\n", s.Name)
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FRONT\tBACK\tBOX\tREVIEWS\tNEXT REVIEW")
			for _, c := range cards {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", c.Front, c.Back, c.BoxNumber, c.ReviewCount, formatTime(c.NextReview))
			}
			return tw.Flush()
		},
	}

	imp := &cobra.Command{
		Use:   "import [DECK.yaml]",
		Short: "Import a YAML deck, or the starter deck when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				deck subject.Deck
				err  error
			)
			if len(args) == 1 {
				deck, err = subject.LoadDeck(args[0])
			} else {
				deck, err = subject.StarterDeck()
			}
			if err != nil {
				return err
			}
			s, n, err := e.subjects.ImportDeck(cmd.Context(), deck)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cards into %q\n", n, s.Name)
			return nil
		},
	}

	cmd.AddCommand(add, list, imp)
	return cmd
}
