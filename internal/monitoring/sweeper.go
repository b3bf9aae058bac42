package monitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/cabinet-be/internal/auth"
)

const sweepTimeout = 30 * time.Second

// SessionSweeper periodically removes expired sessions from a store.
type SessionSweeper struct {
	store auth.SessionStore
	cron  *cron.Cron
}

// NewSessionSweeper creates a sweeper running on the given cron spec, for
// example "@every 10m" or "*/5 * * * *".
func NewSessionSweeper(store auth.SessionStore, spec string) (*SessionSweeper, error) {
	s := &SessionSweeper{store: store, cron: cron.New()}
	if _, err := s.cron.AddFunc(spec, func() { s.Sweep(context.Background()) }); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running the schedule in the background.
func (s *SessionSweeper) Start() {
	log.Info().Msg("Starting session sweeper")
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *SessionSweeper) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped session sweeper")
}

// Sweep removes expired sessions once and returns how many were removed.
func (s *SessionSweeper) Sweep(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := s.store.DeleteExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Session sweep failed")
		return 0
	}
	if n > 0 {
		SessionsSwept.Add(float64(n))
		log.Info().Int64("removed", n).Msg("Removed expired sessions")
	}
	return n
}
