package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
)

type scriptedSource struct {
	mu      sync.Mutex
	matches map[string][]florbal.Result[[]florbal.MatchListItem]
	teams   []string
	rosters []string
}

func (s *scriptedSource) LoadTeamMatches(_ context.Context, teamID string) florbal.Result[[]florbal.MatchListItem] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = append(s.teams, teamID)

	script := s.matches[teamID]
	res := script[0]
	if len(script) > 1 {
		s.matches[teamID] = script[1:]
	}
	return res
}

func (s *scriptedSource) LoadRoster(_ context.Context, matchID string) florbal.Result[florbal.MatchRoster] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rosters = append(s.rosters, matchID)
	return florbal.Fail[florbal.MatchRoster](florbal.ErrEmptyRoster)
}

func newTestOrchestrator(source Source, teams ...string) *Orchestrator {
	log, _ := test.NewNullLogger()
	o := NewOrchestrator(source, &Config{
		Teams:          teams,
		WarmInterval:   time.Hour,
		WarmNextRoster: true,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}, log)
	o.now = func() time.Time { return time.Date(2024, 11, 15, 12, 0, 0, 0, time.UTC) }
	return o
}

func TestWarmAll_RetriesTransportFailures(t *testing.T) {
	source := &scriptedSource{matches: map[string][]florbal.Result[[]florbal.MatchListItem]{
		"1": {
			florbal.Fail[[]florbal.MatchListItem](florbal.ErrUnreachable),
			florbal.Ok([]florbal.MatchListItem{{MatchID: "10", DateISO: "2024-10-01"}}),
		},
		"2": {florbal.Fail[[]florbal.MatchListItem](florbal.ErrNoMatches)},
	}}
	o := newTestOrchestrator(source, "1", "2")

	assert.Equal(t, 1, o.WarmAll(context.Background()))
	assert.Equal(t, []string{"1", "1", "2"}, source.teams, "structure failures are not retried")
	assert.Empty(t, source.rosters, "past matches have no roster to warm")
}

func TestWarmAll_GivesUpAfterMaxRetries(t *testing.T) {
	source := &scriptedSource{matches: map[string][]florbal.Result[[]florbal.MatchListItem]{
		"1": {florbal.Fail[[]florbal.MatchListItem](florbal.ErrUnreachable)},
	}}
	o := newTestOrchestrator(source, "1")

	assert.Zero(t, o.WarmAll(context.Background()))
	assert.Len(t, source.teams, 3)
}

func TestWarmAll_WarmsNextRoster(t *testing.T) {
	source := &scriptedSource{matches: map[string][]florbal.Result[[]florbal.MatchListItem]{
		"1": {florbal.Ok([]florbal.MatchListItem{
			{MatchID: "past", DateISO: "2024-10-01"},
			{MatchID: "later", DateISO: "2024-12-20"},
			{MatchID: "next", DateISO: "2024-11-15"},
		})},
	}}
	o := newTestOrchestrator(source, "1")

	assert.Equal(t, 1, o.WarmAll(context.Background()), "a missing roster does not fail warming")
	assert.Equal(t, []string{"next"}, source.rosters)
}

func TestStart_StopsWithContext(t *testing.T) {
	source := &scriptedSource{matches: map[string][]florbal.Result[[]florbal.MatchListItem]{
		"1": {florbal.Ok([]florbal.MatchListItem{})},
	}}
	o := newTestOrchestrator(source, "1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return len(source.teams) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestStop_EndsStart(t *testing.T) {
	source := &scriptedSource{matches: map[string][]florbal.Result[[]florbal.MatchListItem]{
		"1": {florbal.Ok([]florbal.MatchListItem{})},
	}}
	o := newTestOrchestrator(source, "1")

	done := make(chan struct{})
	go func() {
		o.Start(context.Background())
		close(done)
	}()

	o.Stop()
	o.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}

	idle := newTestOrchestrator(source)
	idle.Stop()
	idle.Start(context.Background())
}
