package recovery

import (
	"context"
	"errors"
	"log"
	"time"

	"backend-rucktracker/internal/geometry"
	"backend-rucktracker/internal/session"
)

// Ledger is the slice of the session service the sweeper drives. Satisfied by
// *session.Service.
type Ledger interface {
	ListStale(ctx context.Context, cutoff time.Time) ([]session.StaleSession, error)
	Samples(ctx context.Context, id string) ([]geometry.Sample, error)
	ForceComplete(ctx context.Context, sess session.Session, completedAt time.Time, samples []geometry.Sample) error
	ForceCancel(ctx context.Context, id string) error
}

// Sweeper periodically drives abandoned sessions to a terminal state. It is
// stateless: every pass rescans the ledger, and the ledger's CAS guard makes
// concurrent or repeated sweeps transition each session exactly once.
type Sweeper struct {
	ledger    Ledger
	staleness time.Duration
	interval  time.Duration
}

var nowFn = time.Now

func NewSweeper(ledger Ledger, staleness, interval time.Duration) *Sweeper {
	return &Sweeper{ledger: ledger, staleness: staleness, interval: interval}
}

// Result counts what one sweep pass did.
type Result struct {
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Skipped   int `json:"skipped"`
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.SweepOnce(ctx, s.staleness)
			if err != nil {
				log.Printf("recovery sweep failed: %v", err)
				continue
			}
			if res.Completed > 0 || res.Cancelled > 0 || res.Skipped > 0 {
				log.Printf("recovery sweep: completed=%d cancelled=%d skipped=%d",
					res.Completed, res.Cancelled, res.Skipped)
			}
		}
	}
}

// SweepOnce scans for sessions with no activity since the staleness cutoff.
// Sessions with samples are force-completed as of their last sample, so sweep
// latency does not inflate duration; sessions without samples are cancelled.
// Sessions that cannot be classified are logged and retried next cycle.
func (s *Sweeper) SweepOnce(ctx context.Context, staleness time.Duration) (Result, error) {
	cutoff := nowFn().UTC().Add(-staleness)

	stale, err := s.ledger.ListStale(ctx, cutoff)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, st := range stale {
		samples, err := s.ledger.Samples(ctx, st.ID)
		if err != nil {
			log.Printf("recovery: cannot load samples for %s, skipping: %v", st.ID, err)
			res.Skipped++
			continue
		}

		if len(samples) == 0 {
			err = s.ledger.ForceCancel(ctx, st.ID)
			switch {
			case err == nil:
				res.Cancelled++
			case errors.Is(err, session.ErrInvalidState):
				// Lost the CAS: someone else already terminated it.
			default:
				log.Printf("recovery: cancel %s failed, will retry: %v", st.ID, err)
				res.Skipped++
			}
			continue
		}

		completedAt := geometry.LastTimestamp(samples)
		if completedAt.IsZero() {
			completedAt = st.LastActivity
		}
		err = s.ledger.ForceComplete(ctx, st.Session, completedAt, samples)
		switch {
		case err == nil:
			res.Completed++
		case errors.Is(err, session.ErrInvalidState):
			// Already terminal, nothing to do.
		default:
			log.Printf("recovery: complete %s failed, will retry: %v", st.ID, err)
			res.Skipped++
		}
	}
	return res, nil
}
