package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/PrathmeshSose/ai-travel-agent/internal/health"
	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
)

// NewHealthChecker probes s through its HealthPing when it has one, otherwise
// through a lookup of a session id that never exists.
func NewHealthChecker(s Store, log zerolog.Logger, probeTimeout time.Duration) *health.PingChecker {
	p, ok := s.(health.HealthPinger)
	if !ok {
		p = lookupPinger{s}
	}
	return health.NewPingChecker("store", p, log, probeTimeout)
}

type lookupPinger struct{ s Store }

func (l lookupPinger) HealthPing(ctx context.Context) error {
	_, err := l.s.Sessions().Get(ctx, "__health_check__")
	if err == nil || errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}
