package commands

import (
	"errors"
	"time"

	"delaynotify/internal/pkg/errs"
	"delaynotify/internal/pkg/guard"
)

var ErrSyncExecutionsCommandIsNotConstructed = errors.New(
	"SyncExecutionsCommand must be created via NewSyncExecutionsCommand constructor",
)

const (
	maxSyncGracePeriod = 7 * 24 * time.Hour
	maxSyncBatchSize   = 1000
)

// SyncExecutionsCommand selects the history rows still marked running whose
// run started more than gracePeriod before now, at most batchSize of them.
type SyncExecutionsCommand struct {
	gracePeriod time.Duration
	batchSize   int
	now         time.Time

	guard guard.ConstructorGuard
}

func NewSyncExecutionsCommand(gracePeriod time.Duration, batchSize int, now time.Time) (SyncExecutionsCommand, error) {
	if gracePeriod < 0 || gracePeriod > maxSyncGracePeriod {
		return SyncExecutionsCommand{}, errs.NewValueIsOutOfRangeError("gracePeriod", gracePeriod, time.Duration(0), maxSyncGracePeriod)
	}
	if batchSize < 1 || batchSize > maxSyncBatchSize {
		return SyncExecutionsCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, maxSyncBatchSize)
	}
	if now.IsZero() {
		return SyncExecutionsCommand{}, errs.NewValueIsRequiredError("now")
	}

	return SyncExecutionsCommand{
		gracePeriod: gracePeriod,
		batchSize:   batchSize,
		now:         now,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c SyncExecutionsCommand) GracePeriod() time.Duration { return c.gracePeriod }
func (c SyncExecutionsCommand) BatchSize() int             { return c.batchSize }
func (c SyncExecutionsCommand) Now() time.Time             { return c.now }

// Cutoff is the start time a running row must precede to be synced.
func (c SyncExecutionsCommand) Cutoff() time.Time { return c.now.Add(-c.gracePeriod) }

func (c SyncExecutionsCommand) Validate() error {
	return c.guard.Validate(ErrSyncExecutionsCommandIsNotConstructed)
}

type SyncExecutionsResult struct {
	Inspected int
	Synced    int
}
