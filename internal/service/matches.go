package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/florbal-stats/internal/store"
)

// MatchStore persists completed matches.
type MatchStore interface {
	Save(ctx context.Context, match *store.CompletedMatch) error
	List(ctx context.Context) ([]*store.CompletedMatch, error)
	Get(ctx context.Context, id string) (*store.CompletedMatch, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// MatchPublisher announces saved matches to other consumers.
type MatchPublisher interface {
	PublishCompletedMatch(ctx context.Context, matchID string, match interface{}) error
}

// Aggregate is the season overview for one team filter.
type Aggregate struct {
	TeamKeys []string                `json:"teamKeys"`
	Matches  []*store.CompletedMatch `json:"matches"`
	Players  []store.PlayerStats     `json:"players"`
}

// MatchService handles completed match business logic
type MatchService struct {
	store     MatchStore
	publisher MatchPublisher
	log       logrus.FieldLogger
}

// NewMatchService creates a new match service. publisher may be nil.
func NewMatchService(matches MatchStore, publisher MatchPublisher, log logrus.FieldLogger) *MatchService {
	return &MatchService{
		store:     matches,
		publisher: publisher,
		log:       log.WithField("component", "match-service"),
	}
}

// Save stores a match and publishes it. Publishing failures are logged only.
func (s *MatchService) Save(ctx context.Context, match *store.CompletedMatch) error {
	if match.Players == nil {
		match.Players = []store.PlayerStats{}
	}
	if err := s.store.Save(ctx, match); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCompletedMatch(ctx, match.ID, match); err != nil {
			s.log.WithError(err).WithField("match", match.ID).Warn("failed to publish completed match")
		}
	}

	s.log.WithFields(logrus.Fields{
		"match":   match.ID,
		"label":   match.Label,
		"players": len(match.Players),
	}).Info("completed match saved")
	return nil
}

// List returns all completed matches, newest first
func (s *MatchService) List(ctx context.Context) ([]*store.CompletedMatch, error) {
	matches, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	return matches, nil
}

// Get returns one completed match
func (s *MatchService) Get(ctx context.Context, id string) (*store.CompletedMatch, error) {
	return s.store.Get(ctx, id)
}

// Delete removes one completed match
func (s *MatchService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// DeleteAll clears the match history
func (s *MatchService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.log.WithField("deleted", n).Info("match history cleared")
	return n, nil
}

// Aggregate sums player stats over the matches of one team. With an empty
// teamName the first team in the history is used, or all matches when none is known.
func (s *MatchService) Aggregate(ctx context.Context, teamName, competition string) (*Aggregate, error) {
	matches, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	keys := TeamKeys(matches)
	if teamName == "" {
		for _, m := range matches {
			if TeamKey(m) != "" {
				teamName, competition = m.TeamName, m.Competition
				break
			}
		}
	}

	filtered := FilterByTeam(matches, teamName, competition)
	return &Aggregate{
		TeamKeys: keys,
		Matches:  filtered,
		Players:  AggregatePlayers(filtered),
	}, nil
}

// LastRoster returns the players of the most recent match with counters zeroed, to
// start a new match when the federation has not published a roster yet.
func (s *MatchService) LastRoster(ctx context.Context) ([]store.PlayerStats, error) {
	matches, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("last roster: %w", store.ErrNotFound)
	}

	players := make([]store.PlayerStats, len(matches[0].Players))
	for i, p := range matches[0].Players {
		p.ResetCounters()
		players[i] = p
	}
	return players, nil
}
