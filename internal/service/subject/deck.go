package subject

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

//go:embed decks/starter.yaml
var starterDeck []byte

// Deck is a subject with its cards, as stored in a YAML deck file.
type Deck struct {
	Subject     string      `yaml:"subject"`
	Description string      `yaml:"description"`
	Cards       []CardDraft `yaml:"cards"`
}

// LoadDeck reads a YAML deck file.
func LoadDeck(path string) (Deck, error) {
	var d Deck
	if err := cleanenv.ReadConfig(path, &d); err != nil {
		return Deck{}, fmt.Errorf("read deck %s: %w", path, err)
	}
	return d, nil
}

// StarterDeck returns the deck offered to new users.
func StarterDeck() (Deck, error) {
	var d Deck
	if err := cleanenv.ParseYAML(bytes.NewReader(starterDeck), &d); err != nil {
		return Deck{}, fmt.Errorf("parse starter deck: %w", err)
	}
	return d, nil
}

// ImportDeck adds the cards of a deck to the current user's subject with the
// deck's name, creating the subject first when it does not exist. Everything
// happens in one transaction.
func (s *Service) ImportDeck(ctx context.Context, deck Deck) (domain.Subject, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Subject{}, 0, domain.ErrUnauthorized
	}

	input := CreateSubjectInput{Name: deck.Subject}
	if deck.Description != "" {
		input.Description = &deck.Description
	}
	if err := input.Validate(); err != nil {
		return domain.Subject{}, 0, err
	}

	var (
		target domain.Subject
		n      int
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.subjects.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("list subjects: %w", err)
		}

		found := false
		for _, sub := range existing {
			if sub.Name == input.Name {
				target, found = sub, true
				break
			}
		}
		if !found {
			if target, err = s.CreateSubject(ctx, input); err != nil {
				return err
			}
		}

		n, err = s.ImportCards(ctx, ImportCardsInput{SubjectID: target.ID, Cards: deck.Cards})
		return err
	})
	if err != nil {
		return domain.Subject{}, 0, err
	}

	s.log.InfoContext(ctx, "deck imported",
		slog.String("user_id", userID.String()),
		slog.String("subject", target.Name),
		slog.Int("cards", n),
	)
	return target, n, nil
}
