package review

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/domain"
	"github.com/micronotes/review-api/internal/platform/logger"
	"github.com/micronotes/review-api/internal/store"
)

// Verify interface compliance at compile time
var _ Selector = (*dueItemSelector)(nil)

// dueItemSelector implements Selector on top of an AtomStore.
type dueItemSelector struct {
	atoms        store.AtomStore
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// NewSelector creates a Selector that reads candidates from the given
// atom store. defaultLimit is used when callers pass no limit; maxLimit
// caps what callers may request.
func NewSelector(atoms store.AtomStore, defaultLimit, maxLimit int, logger *slog.Logger) Selector {
	if atoms == nil {
		panic("atoms cannot be nil")
	}
	if defaultLimit < 1 {
		defaultLimit = 5
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &dueItemSelector{
		atoms:        atoms,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger.With(slog.String("component", "due_item_selector")),
	}
}

// SelectDueItems implements Selector.SelectDueItems.
//
// The scan is bounded: at most twice the effective limit is read from the
// store, ordered most-overdue first, then re-ranked by priority. With a
// large backlog this trades global optimality for a constant-size query;
// the most overdue atoms are always in the scanned window.
func (s *dueItemSelector) SelectDueItems(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
	now time.Time,
) (*DueItems, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	candidates, err := s.atoms.FindDueCandidates(ctx, userID, now, 2*limit)
	if err != nil {
		log.Error("failed to load due candidates",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to load due candidates: %w", err)
	}

	items := make([]DueItem, 0, len(candidates))
	for _, atom := range candidates {
		urgency := reviewUrgency(atom, now)
		items = append(items, DueItem{
			Atom:             atom,
			Urgency:          urgency,
			Priority:         atom.ImportanceScore * urgency,
			EstimatedMinutes: atom.EstimatedReviewMinutes(),
		})
	}

	// Stable sort keeps the store's overdue-first ordering for ties.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority > items[j].Priority
	})

	if len(items) > limit {
		items = items[:limit]
	}

	result := &DueItems{Items: items}
	for _, item := range items {
		result.TotalEstimatedMinutes += item.EstimatedMinutes
	}
	// Per-item estimates stay fractional; the session total is rounded up
	// to whole minutes.
	result.TotalEstimatedMinutes = math.Ceil(result.TotalEstimatedMinutes)
	result.ReviewLimitReached = len(items) >= limit
	if len(items) > 0 {
		result.NextReviewAt = now.Add(time.Hour)
	}

	log.Debug("due items selected",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(items)),
		slog.Int("limit", limit))
	return result, nil
}

// reviewUrgency scores how badly an atom needs review right now.
// Never-scheduled atoms are maximally urgent. Overdue atoms ramp from 0.5
// toward 1.0 over 48 hours. Atoms not yet due score a nominal 0.1; the
// store query filters those out, so the branch only matters for callers
// handing in their own atom lists.
func reviewUrgency(atom *domain.Atom, now time.Time) float64 {
	if atom.Schedule.NextReviewAt.IsZero() {
		return 1.0
	}

	if atom.Schedule.IsDue(now) {
		overdueHours := now.Sub(atom.Schedule.NextReviewAt).Hours()
		urgency := 0.5 + overdueHours/48.0
		if urgency > 1.0 {
			urgency = 1.0
		}
		return urgency
	}

	return 0.1
}
