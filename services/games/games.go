// Package games holds the game access rules and the operations that change
// a game's roster, status and invitations.
package games

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	models "Courtside/models/postgres"
	"Courtside/services/errs"
	"Courtside/services/notify"
	"Courtside/services/store"
)

type Service struct {
	store     store.Store
	publisher notify.Publisher
	now       func() time.Time
}

// NewService builds the game service. publisher may be nil, in which case
// join and leave events are dropped.
func NewService(s store.Store, publisher notify.Publisher) *Service {
	return &Service{store: s, publisher: publisher, now: time.Now}
}

// GameInput carries the editable fields of a game.
type GameInput struct {
	Title           string
	Description     string
	Type            models.GameVisibility
	GameType        models.GameKind
	Status          models.GameStatus // update only
	DataTime        *time.Time
	ClubID          uint
	CourtID         uint
	CustomLocation  string
	DurationMinutes *int
	MinLevel        *int
	MaxLevel        *int
	MaxPlayers      *int
	Price           *float64
	CostPerPlayer   *float64
}

// GameView is a game together with its roster.
type GameView struct {
	models.Game
	Players      []models.PlayerSummary `json:"players"`
	PlayersCount int                    `json:"players_count"`
}

func notFound(what string) error {
	return errs.New(errs.NotFound, what+" not found")
}

func noLinkedProfile() error {
	return errs.New(errs.NoLinkedProfile, "user has no linked player profile")
}

// loadActor resolves the acting player, which must exist.
func loadActor(ctx context.Context, tx store.Store, playerID uint) (*models.Player, error) {
	player, err := tx.PlayerByID(ctx, playerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, noLinkedProfile()
	}
	if err != nil {
		return nil, fmt.Errorf("load player %d: %w", playerID, err)
	}
	return player, nil
}

func loadGame(ctx context.Context, tx store.Store, gameID uint, lock bool) (*models.Game, error) {
	var game *models.Game
	var err error
	if lock {
		game, err = tx.LockGame(ctx, gameID)
	} else {
		game, err = tx.GameByID(ctx, gameID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("game")
	}
	if err != nil {
		return nil, fmt.Errorf("load game %d: %w", gameID, err)
	}
	return game, nil
}

// loadSubject reads the membership and invitation facts the access rules
// decide on.
func loadSubject(ctx context.Context, tx store.Store, game models.Game, playerID uint) (Subject, error) {
	s := Subject{Game: game, PlayerID: playerID}

	member, err := tx.IsMember(ctx, game.ID, playerID)
	if err != nil {
		return s, fmt.Errorf("check membership: %w", err)
	}
	s.IsMember = member

	invitation, err := tx.InvitationFor(ctx, game.ID, playerID)
	switch {
	case err == nil:
		s.Invitation = invitation.Status
	case !errors.Is(err, store.ErrNotFound):
		return s, fmt.Errorf("load invitation: %w", err)
	}
	return s, nil
}

func validateInput(in *GameInput, update bool) error {
	if in.Type == "" {
		in.Type = models.VisibilityPublic
	}
	if in.Type != models.VisibilityPublic && in.Type != models.VisibilityPrivate {
		return errs.New(errs.Validation, "type must be public or private")
	}
	if in.GameType == "" {
		in.GameType = models.KindCasual
	}
	switch in.GameType {
	case models.KindCasual, models.KindCompetitive, models.KindTraining:
	default:
		return errs.New(errs.Validation, "game_type must be casual, competitive or training")
	}
	if update {
		switch in.Status {
		case models.StatusOpen, models.StatusFull, models.StatusInProgress, models.StatusCompleted, models.StatusCanceled:
		default:
			return errs.New(errs.Validation, "status must be open, full, in_progress, completed or canceled")
		}
	}
	if in.MinLevel != nil && in.MaxLevel != nil && *in.MinLevel > *in.MaxLevel {
		return errs.New(errs.Validation, "min_level cannot be greater than max_level")
	}
	if in.MaxPlayers != nil && *in.MaxPlayers < 2 {
		return errs.New(errs.Validation, "max_players must be at least 2")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 30 {
		return errs.New(errs.Validation, "duration_minutes must be at least 30")
	}
	if in.ClubID == 0 || in.CourtID == 0 {
		return errs.New(errs.Validation, "club_id and court_id are required")
	}
	return nil
}

func checkCourt(ctx context.Context, tx store.Store, clubID, courtID uint) error {
	court, err := tx.CourtByID(ctx, courtID)
	if errors.Is(err, store.ErrNotFound) {
		return errs.New(errs.Validation, "court does not exist")
	}
	if err != nil {
		return fmt.Errorf("load court %d: %w", courtID, err)
	}
	if court.ClubID != clubID {
		return errs.New(errs.Validation, "court does not belong to the club")
	}
	return nil
}

func applyInput(game *models.Game, in GameInput) {
	game.Title = in.Title
	game.Description = in.Description
	game.Type = in.Type
	game.GameType = in.GameType
	game.DataTime = in.DataTime
	game.ClubID = in.ClubID
	game.CourtID = in.CourtID
	game.CustomLocation = in.CustomLocation
	game.MinLevel = in.MinLevel
	game.MaxLevel = in.MaxLevel
	game.Price = in.Price
	game.CostPerPlayer = in.CostPerPlayer
	if in.DurationMinutes != nil {
		game.DurationMinutes = *in.DurationMinutes
	}
	if in.MaxPlayers != nil {
		game.MaxPlayers = *in.MaxPlayers
	}
}

// Create stores a new open game owned by ownerID, who becomes its first
// member.
func (s *Service) Create(ctx context.Context, ownerID uint, in GameInput) (*GameView, error) {
	if err := validateInput(&in, false); err != nil {
		return nil, err
	}

	var view *GameView
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		owner, err := loadActor(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if err := checkCourt(ctx, tx, in.ClubID, in.CourtID); err != nil {
			return err
		}

		game := models.Game{
			OwnerPlayerID:   owner.ID,
			Status:          models.StatusOpen,
			DurationMinutes: 90,
			MaxPlayers:      models.DefaultMaxPlayers,
		}
		applyInput(&game, in)
		if err := tx.CreateGame(ctx, &game); err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		if _, err := tx.AddMember(ctx, game.ID, owner.ID, s.now()); err != nil {
			return fmt.Errorf("add owner to game %d: %w", game.ID, err)
		}

		view = &GameView{
			Game:         game,
			Players:      []models.PlayerSummary{owner.Summary()},
			PlayersCount: 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[GAME] Player %d created %s game %d", ownerID, view.Type, view.ID)
	return view, nil
}

// Update replaces the editable fields of a game. Only the owner may update.
// The status may be set to any value; open and full are then reconciled
// with the roster size.
func (s *Service) Update(ctx context.Context, actorID, gameID uint, in GameInput) (*GameView, error) {
	if err := validateInput(&in, true); err != nil {
		return nil, err
	}

	var view *GameView
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := loadActor(ctx, tx, actorID); err != nil {
			return err
		}
		game, err := loadGame(ctx, tx, gameID, true)
		if err != nil {
			return err
		}
		if !CanUpdate(Subject{Game: *game, PlayerID: actorID}) {
			return errs.New(errs.AccessDenied, "only the owner can update this game")
		}
		if in.ClubID != game.ClubID || in.CourtID != game.CourtID {
			if err := checkCourt(ctx, tx, in.ClubID, in.CourtID); err != nil {
				return err
			}
		}

		count, err := tx.CountMembers(ctx, game.ID)
		if err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		if in.MaxPlayers != nil && *in.MaxPlayers < count {
			return errs.New(errs.Validation,
				fmt.Sprintf("max_players cannot be lower than the %d players already in the game", count))
		}

		applyInput(game, in)
		game.Status = in.Status
		if game.Status == models.StatusOpen || game.Status == models.StatusFull {
			game.Status = rosterStatus(*game, count)
		}
		if err := tx.SaveGame(ctx, game); err != nil {
			return fmt.Errorf("save game %d: %w", game.ID, err)
		}

		view, err = buildView(ctx, tx, *game)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// rosterStatus is the open/full status a game with count players should have.
func rosterStatus(game models.Game, count int) models.GameStatus {
	if game.HasCapacity() && count >= game.MaxPlayers {
		return models.StatusFull
	}
	return models.StatusOpen
}

func buildView(ctx context.Context, tx store.Store, game models.Game) (*GameView, error) {
	members, err := tx.Members(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("load roster of game %d: %w", game.ID, err)
	}
	view := &GameView{Game: game, Players: make([]models.PlayerSummary, 0, len(members))}
	for _, m := range members {
		view.Players = append(view.Players, m.Summary())
	}
	view.PlayersCount = len(view.Players)
	return view, nil
}

// Show returns a game the actor is allowed to see.
func (s *Service) Show(ctx context.Context, actorID, gameID uint) (*GameView, error) {
	if _, err := loadActor(ctx, s.store, actorID); err != nil {
		return nil, err
	}
	game, err := loadGame(ctx, s.store, gameID, false)
	if err != nil {
		return nil, err
	}
	subject, err := loadSubject(ctx, s.store, *game, actorID)
	if err != nil {
		return nil, err
	}
	if !CanView(subject) {
		return nil, errs.New(errs.AccessDenied, "you cannot view this game")
	}
	return buildView(ctx, s.store, *game)
}

func (s *Service) views(ctx context.Context, games []models.Game) ([]GameView, error) {
	views := make([]GameView, 0, len(games))
	for _, g := range games {
		view, err := buildView(ctx, s.store, g)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// ListMine lists the open games the player is in.
func (s *Service) ListMine(ctx context.Context, playerID uint) ([]GameView, error) {
	if _, err := loadActor(ctx, s.store, playerID); err != nil {
		return nil, err
	}
	games, err := s.store.GamesByMember(ctx, playerID, models.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("list games of player %d: %w", playerID, err)
	}
	return s.views(ctx, games)
}

// ListAvailable lists public open games owned by someone else.
func (s *Service) ListAvailable(ctx context.Context, playerID uint) ([]GameView, error) {
	if _, err := loadActor(ctx, s.store, playerID); err != nil {
		return nil, err
	}
	games, err := s.store.PublicGames(ctx, playerID, models.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("list available games: %w", err)
	}
	return s.views(ctx, games)
}

// CanSubscribe reports whether the player may receive the game's events.
// A missing game or player is simply not authorized.
func (s *Service) CanSubscribe(ctx context.Context, playerID, gameID uint) (bool, error) {
	game, err := s.store.GameByID(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load game %d: %w", gameID, err)
	}
	if game.IsOwner(playerID) {
		return true, nil
	}
	member, err := s.store.IsMember(ctx, gameID, playerID)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return CanSubscribe(Subject{Game: *game, PlayerID: playerID, IsMember: member}), nil
}
