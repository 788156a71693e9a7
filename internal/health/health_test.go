package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type pinger struct{ fail atomic.Bool }

func (p *pinger) HealthPing(context.Context) error {
	if p.fail.Load() {
		return errors.New("down")
	}
	return nil
}

func TestPingChecker_Check(t *testing.T) {
	p := &pinger{}
	c := NewPingChecker("cache", p, zerolog.Nop(), 0)
	assert.False(t, c.IsHealthy(), "starts down until first probe")

	assert.True(t, c.Check(context.Background()))
	assert.True(t, c.IsHealthy())

	p.fail.Store(true)
	assert.False(t, c.Check(context.Background()))
	assert.False(t, c.IsHealthy())
	assert.Equal(t, "cache", c.Name())
}

func TestServiceHealthChecker_Aggregates(t *testing.T) {
	good := &pinger{}
	bad := &pinger{}
	bad.fail.Store(true)

	gc := NewPingChecker("store", good, zerolog.Nop(), time.Second)
	bc := NewPingChecker("cache", bad, zerolog.Nop(), time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gc.Start(ctx, 10*time.Millisecond)
	go bc.Start(ctx, 10*time.Millisecond)

	svc := NewServiceHealthChecker(zerolog.Nop(), gc, bc)
	go svc.Start(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		down := svc.Unhealthy()
		return !svc.IsHealthy() && len(down) == 1 && down[0] == "cache"
	}, time.Second, 10*time.Millisecond)

	bad.fail.Store(false)
	assert.Eventually(t, svc.IsHealthy, time.Second, 10*time.Millisecond)
}
