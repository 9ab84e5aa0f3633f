package factory

import (
	"context"
	"fmt"

	"github.com/touchline/touchline-chat/internal/model"
)

// Seed populates storage with a small demo dataset: two players, two
// officials, one pre-existing contact, and a short message history.
// It is idempotent on usernames: if the first user already exists the
// seed is skipped.
func (a *App) Seed(ctx context.Context) error {
	if _, err := a.Storage.GetParticipantByUsername(ctx, "Zawodnik 1"); err == nil {
		return nil
	}

	player1, err := a.DirectoryService.Register(ctx, "Zawodnik 1", model.RolePlayer)
	if err != nil {
		return fmt.Errorf("seeding player 1: %w", err)
	}
	player2, err := a.DirectoryService.Register(ctx, "Zawodnik 2", model.RolePlayer)
	if err != nil {
		return fmt.Errorf("seeding player 2: %w", err)
	}
	official1, err := a.DirectoryService.Register(ctx, "Działacz 1", model.RoleOfficial)
	if err != nil {
		return fmt.Errorf("seeding official 1: %w", err)
	}
	if _, err := a.DirectoryService.Register(ctx, "Działacz 2", model.RoleOfficial); err != nil {
		return fmt.Errorf("seeding official 2: %w", err)
	}

	if err := a.Storage.CreateContact(ctx, model.NewContactPair(player1.ID, official1.ID)); err != nil {
		return fmt.Errorf("seeding contact: %w", err)
	}

	seedMessages := []struct {
		sender   model.ParticipantID
		receiver model.ParticipantID
		content  string
	}{
		{player1.ID, player2.ID, "Hi, how's it going?"},
		{player2.ID, player1.ID, "I'm good, thanks! How about you?"},
		{player1.ID, official1.ID, "Good morning, I have a question about the training."},
	}
	for _, m := range seedMessages {
		if _, err := a.HistoryService.Append(ctx, m.sender, m.receiver, m.content); err != nil {
			return fmt.Errorf("seeding message: %w", err)
		}
	}

	return nil
}
