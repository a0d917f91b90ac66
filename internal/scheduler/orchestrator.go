package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
	"github.com/fortuna/florbal-stats/internal/service"
)

// Source is the part of the florbal client the warmer drives.
type Source interface {
	LoadTeamMatches(ctx context.Context, teamID string) florbal.Result[[]florbal.MatchListItem]
	LoadRoster(ctx context.Context, matchID string) florbal.Result[florbal.MatchRoster]
}

// Orchestrator keeps the gateway page cache warm for the watched teams
type Orchestrator struct {
	source Source
	config *Config
	log    logrus.FieldLogger
	now    func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// Config holds scheduler configuration
type Config struct {
	Teams          []string      // Team ids to warm
	WarmInterval   time.Duration // Default: 5m
	WarmNextRoster bool          // Default: true
	MaxRetries     int           // Default: 3
	RetryDelay     time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		WarmInterval:   5 * time.Minute,
		WarmNextRoster: true,
		MaxRetries:     3,
		RetryDelay:     5 * time.Second,
	}
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(source Source, config *Config, log logrus.FieldLogger) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Orchestrator{
		source: source,
		config: config,
		log:    log.WithField("component", "scheduler"),
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// Start warms every watched team once and then every WarmInterval. It blocks
// until ctx is cancelled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-o.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	if len(o.config.Teams) == 0 {
		o.log.Info("no watched teams, cache warmer idle")
		<-ctx.Done()
		return
	}

	o.log.WithFields(logrus.Fields{
		"teams":    o.config.Teams,
		"interval": o.config.WarmInterval,
	}).Info("cache warmer started")

	ticker := time.NewTicker(o.config.WarmInterval)
	defer ticker.Stop()

	o.WarmAll(ctx)
	for {
		select {
		case <-ctx.Done():
			o.log.Info("cache warmer stopped")
			return
		case <-ticker.C:
			o.WarmAll(ctx)
		}
	}
}

// Stop ends Start, including one that has not begun yet. It is safe to call
// more than once.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.done) })
}

// WarmAll warms each watched team and returns how many succeeded
func (o *Orchestrator) WarmAll(ctx context.Context) int {
	warmed := 0
	for _, teamID := range o.config.Teams {
		if ctx.Err() != nil {
			break
		}
		if o.warmTeamWithRetry(ctx, teamID) {
			warmed++
		}
	}
	return warmed
}

// warmTeamWithRetry loads a team's match list, retrying transport failures only
func (o *Orchestrator) warmTeamWithRetry(ctx context.Context, teamID string) bool {
	entry := o.log.WithField("team", teamID)

	var res florbal.Result[[]florbal.MatchListItem]
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		res = o.source.LoadTeamMatches(ctx, teamID)
		if res.OK || (res.Kind != florbal.KindTransport && res.Kind != florbal.KindHTTP) {
			break
		}

		entry.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   res.Error,
		}).Warn("warming attempt failed")

		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(o.config.RetryDelay):
			}
		}
	}

	if !res.OK {
		entry.WithFields(logrus.Fields{"kind": res.Kind, "error": res.Error}).Error("could not warm match list")
		return false
	}
	entry.WithField("matches", len(res.Data)).Debug("match list warmed")

	if o.config.WarmNextRoster {
		o.warmNextRoster(ctx, entry, res.Data)
	}
	return true
}

// warmNextRoster loads the roster of the soonest upcoming match
func (o *Orchestrator) warmNextRoster(ctx context.Context, entry logrus.FieldLogger, items []florbal.MatchListItem) {
	sorted := service.SortMatchList(items, o.now())
	if len(sorted) == 0 || sorted[0].DateISO == "" || service.IsPast(sorted[0], o.now()) {
		return
	}

	next := sorted[0]
	if res := o.source.LoadRoster(ctx, next.MatchID); !res.OK {
		// Rosters are usually published shortly before the match.
		entry.WithFields(logrus.Fields{"match": next.MatchID, "kind": res.Kind}).Debug("next roster not available")
		return
	}
	entry.WithField("match", next.MatchID).Debug("next roster warmed")
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"teams":            o.config.Teams,
		"warm_interval":    o.config.WarmInterval.String(),
		"warm_next_roster": o.config.WarmNextRoster,
	}
}
