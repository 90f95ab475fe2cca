package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultDelay is how long a simulated submission takes.
const DefaultDelay = 5 * time.Second

// Receipt acknowledges an accepted submission.
type Receipt struct {
	ID          string
	SubmittedAt time.Time
}

// Submitter accepts valid forms after a fixed delay. There is no account
// service behind it; the delay stands in for the round trip.
type Submitter struct {
	delay  time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewSubmitter creates a submitter. A negative delay is treated as zero.
func NewSubmitter(delay time.Duration, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{delay: max(delay, 0), logger: logger, now: time.Now}
}

// Submit validates form and then waits out the delay. Invalid forms fail
// immediately with FieldErrors; a cancelled ctx aborts the wait.
func (s *Submitter) Submit(ctx context.Context, form Form) (Receipt, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return Receipt{}, errs
	}

	id := uuid.NewString()
	s.logger.Debug("submitting form",
		slog.String("submission_id", id),
		slog.String("form", fmt.Sprintf("%T", form)),
		slog.Duration("delay", s.delay),
	)

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Receipt{}, fmt.Errorf("submit %s: %w", id, ctx.Err())
	case <-timer.C:
	}

	s.logger.Info("form submitted", slog.String("submission_id", id))
	return Receipt{ID: id, SubmittedAt: s.now()}, nil
}
