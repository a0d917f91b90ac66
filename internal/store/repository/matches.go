package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fortuna/florbal-stats/internal/store"
)

// MatchRepository handles completed match data access
type MatchRepository struct {
	db *store.Database
}

// NewMatchRepository creates a new completed match repository
func NewMatchRepository(db *store.Database) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchColumns = `id, match_date, label, team_name, competition, our_score, opponent_score, players`

// Save inserts a match or replaces the stored one with the same id. A replaced
// match keeps its place in the list.
func (r *MatchRepository) Save(ctx context.Context, match *store.CompletedMatch) error {
	players, err := json.Marshal(nonNilPlayers(match.Players))
	if err != nil {
		return fmt.Errorf("encoding players: %w", err)
	}

	query := `
		INSERT INTO completed_matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			match_date = EXCLUDED.match_date,
			label = EXCLUDED.label,
			team_name = EXCLUDED.team_name,
			competition = EXCLUDED.competition,
			our_score = EXCLUDED.our_score,
			opponent_score = EXCLUDED.opponent_score,
			players = EXCLUDED.players,
			updated_at = NOW()
	`

	_, err = r.db.DB().ExecContext(ctx, query,
		match.ID, match.Date, match.Label,
		nullString(match.TeamName), nullString(match.Competition),
		match.OurScore, match.OpponentScore, players,
	)
	if err != nil {
		return fmt.Errorf("saving match %s: %w", match.ID, err)
	}
	return nil
}

// List returns all matches, newest first
func (r *MatchRepository) List(ctx context.Context) ([]*store.CompletedMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM completed_matches ORDER BY seq DESC`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	matches := []*store.CompletedMatch{}
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// Get finds a match by id
func (r *MatchRepository) Get(ctx context.Context, id string) (*store.CompletedMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM completed_matches WHERE id = $1`

	match, err := scanMatch(r.db.DB().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return match, nil
}

// Delete removes a match; deleting an unknown id is not an error
func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.DB().ExecContext(ctx, `DELETE FROM completed_matches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting match %s: %w", id, err)
	}
	return nil
}

// DeleteAll removes every match and returns how many were deleted
func (r *MatchRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.DB().ExecContext(ctx, `DELETE FROM completed_matches`)
	if err != nil {
		return 0, fmt.Errorf("deleting matches: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*store.CompletedMatch, error) {
	var (
		match       store.CompletedMatch
		teamName    sql.NullString
		competition sql.NullString
		players     []byte
	)

	err := row.Scan(
		&match.ID, &match.Date, &match.Label, &teamName, &competition,
		&match.OurScore, &match.OpponentScore, &players,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning match: %w", err)
	}

	match.TeamName = teamName.String
	match.Competition = competition.String
	if err := json.Unmarshal(players, &match.Players); err != nil {
		return nil, fmt.Errorf("decoding players of match %s: %w", match.ID, err)
	}
	match.Players = nonNilPlayers(match.Players)

	return &match, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNilPlayers(players []store.PlayerStats) []store.PlayerStats {
	if players == nil {
		return []store.PlayerStats{}
	}
	return players
}
