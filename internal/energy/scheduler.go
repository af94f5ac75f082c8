// Package energy runs the background refill loop for a player's energy.
package energy

import (
	"context"
	"log"
	"sync"
	"time"
)

// TickRate is how often elapsed time is reconciled into energy.
const TickRate = 1 * time.Second

// Refiller is the part of the economy the scheduler drives.
type Refiller interface {
	// Refill converts elapsed time into energy and returns the units added.
	Refill() int
}

// Scheduler periodically asks the economy to refill energy. It holds no
// state of its own; only its effects on the economy are persisted.
type Scheduler struct {
	target Refiller
	rate   time.Duration
	logger *log.Logger
	name   string

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// OnRefill, when set, runs after a tick that added energy.
	OnRefill func(added int)
}

func NewScheduler(name string, target Refiller, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		target:   target,
		rate:     TickRate,
		logger:   logger,
		name:     name,
		stopChan: make(chan struct{}),
	}
}

// Start launches the loop. It ends when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	added := s.target.Refill()
	if added <= 0 {
		return
	}
	s.logger.Printf("energy: %s regained %d", s.name, added)
	if s.OnRefill != nil {
		s.OnRefill(added)
	}
}
