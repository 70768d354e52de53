// Package clubs loads the clubs and courts games are played on. Clubs are
// managed outside the API: the seed command writes them to PostgreSQL and
// the server writes the demo club into the in-memory store at startup.
package clubs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	models "Courtside/models/postgres"
	"Courtside/services/store"
)

// Defaults returns the demo club. Every call builds fresh slices since
// creating a club writes ids into its courts.
func Defaults() []models.Club {
	return []models.Club{
		{
			Name:  "Club Norte",
			City:  "Zaragoza",
			State: "Aragón",
			Courts: []models.Court{
				{Name: "Pista 1", Type: "padel", Covered: true},
				{Name: "Pista 2", Type: "padel"},
			},
		},
	}
}

// Load decodes a JSON array of clubs with nested courts.
func Load(r io.Reader) ([]models.Club, error) {
	var clubs []models.Club
	if err := json.NewDecoder(r).Decode(&clubs); err != nil {
		return nil, fmt.Errorf("decode clubs: %w", err)
	}
	for i, club := range clubs {
		if club.Name == "" {
			return nil, fmt.Errorf("club %d has no name", i)
		}
		if len(club.Courts) == 0 {
			return nil, fmt.Errorf("club %q has no courts", club.Name)
		}
	}
	return clubs, nil
}

// Seed creates every club and its courts in one transaction.
func Seed(ctx context.Context, st store.Store, clubs []models.Club) error {
	return st.Transaction(ctx, func(tx store.Store) error {
		for i := range clubs {
			if err := tx.CreateClub(ctx, &clubs[i]); err != nil {
				return fmt.Errorf("create club %q: %w", clubs[i].Name, err)
			}
			log.Printf("[SEED] club %d %q with %d courts", clubs[i].ID, clubs[i].Name, len(clubs[i].Courts))
		}
		return nil
	})
}
