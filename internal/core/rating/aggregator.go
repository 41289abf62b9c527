// Package rating keeps each staff member's (average, count) in step with
// their live reviews.
package rating

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"eclat-salon/internal/core/domain"
)

// MutateFunc computes the next rating from the current one
type MutateFunc func(current domain.StaffRating) (domain.StaffRating, error)

// Store persists staff ratings.
// Update must run fn against the latest stored value and write its result
// atomically with respect to other Update calls for the same staff member.
type Store interface {
	Update(ctx context.Context, staffID uint, fn MutateFunc) (domain.StaffRating, error)
	Recompute(ctx context.Context, staffID uint) (domain.StaffRating, error)
	StaffIDs(ctx context.Context) ([]uint, error)
}

// Aggregator applies review events to staff ratings
type Aggregator struct {
	store  Store
	logger *zap.Logger
	locks  sync.Map // staffID -> *sync.Mutex
}

// NewAggregator creates a rating aggregator
func NewAggregator(store Store, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{store: store, logger: logger}
}

// OnReviewCreated folds a new review into the staff rating
func (a *Aggregator) OnReviewCreated(ctx context.Context, staffID uint, overall int) (domain.StaffRating, error) {
	if !domain.ValidRating(overall) {
		return domain.StaffRating{}, fmt.Errorf("%w: rating %d", domain.ErrInvalidInput, overall)
	}
	return a.apply(ctx, "review_created", staffID, func(cur domain.StaffRating) (domain.StaffRating, error) {
		return cur.WithAdded(overall), nil
	})
}

// OnReviewRatingChanged swaps an old rating for a new one without changing the count
func (a *Aggregator) OnReviewRatingChanged(ctx context.Context, staffID uint, oldRating, newRating int) (domain.StaffRating, error) {
	if !domain.ValidRating(oldRating) || !domain.ValidRating(newRating) {
		return domain.StaffRating{}, fmt.Errorf("%w: rating %d -> %d", domain.ErrInvalidInput, oldRating, newRating)
	}
	return a.apply(ctx, "review_rating_changed", staffID, func(cur domain.StaffRating) (domain.StaffRating, error) {
		if oldRating == newRating && cur.Count >= 1 {
			return cur, nil
		}
		return cur.WithChanged(oldRating, newRating)
	})
}

// OnReviewDeleted removes a review from the staff rating
func (a *Aggregator) OnReviewDeleted(ctx context.Context, staffID uint, overall int) (domain.StaffRating, error) {
	if !domain.ValidRating(overall) {
		return domain.StaffRating{}, fmt.Errorf("%w: rating %d", domain.ErrInvalidInput, overall)
	}
	return a.apply(ctx, "review_deleted", staffID, func(cur domain.StaffRating) (domain.StaffRating, error) {
		return cur.WithRemoved(overall)
	})
}

// Reconcile overwrites the stored rating with the exact value from a full review scan
func (a *Aggregator) Reconcile(ctx context.Context, staffID uint) (domain.StaffRating, error) {
	mu := a.lockFor(staffID)
	mu.Lock()
	defer mu.Unlock()

	r, err := a.store.Recompute(ctx, staffID)
	if err != nil {
		a.logger.Error("rating reconcile failed", zap.Uint("staff_id", staffID), zap.Error(err))
		return domain.StaffRating{}, err
	}
	a.logger.Debug("rating reconciled",
		zap.Uint("staff_id", staffID),
		zap.Float64("average", r.Average),
		zap.Int("count", r.Count),
	)
	return r, nil
}

// ReconcileAll reconciles every staff member. Per-staff failures are logged and
// counted; the first one is returned after the sweep.
func (a *Aggregator) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := a.store.StaffIDs(ctx)
	if err != nil {
		return 0, err
	}
	var firstErr error
	done := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if _, err := a.Reconcile(ctx, id); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		done++
	}
	return done, firstErr
}

func (a *Aggregator) apply(ctx context.Context, event string, staffID uint, fn MutateFunc) (domain.StaffRating, error) {
	mu := a.lockFor(staffID)
	mu.Lock()
	defer mu.Unlock()

	r, err := a.store.Update(ctx, staffID, fn)
	if err != nil {
		if errors.Is(err, domain.ErrInconsistentState) {
			a.logger.Error("rating state inconsistent",
				zap.String("event", event),
				zap.Uint("staff_id", staffID),
				zap.Error(err),
			)
		}
		return domain.StaffRating{}, err
	}
	return r, nil
}

func (a *Aggregator) lockFor(staffID uint) *sync.Mutex {
	mu, _ := a.locks.LoadOrStore(staffID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
