// Package schedule makes sure a set of timed messages exists in a chat
// exactly once.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/danhigham/autotele/internal/domain"
	"github.com/danhigham/autotele/internal/telegram"
)

// Tolerance is how close an existing scheduled message must be to a target
// time for the target to count as already scheduled.
const Tolerance = 180 * time.Second

// Backend is the subset of a telegram client the reconciler needs.
type Backend interface {
	ScheduledMessages(ctx context.Context, chatID int64) ([]domain.ScheduledMessage, error)
	LoadChats(ctx context.Context) error
	SendScheduled(ctx context.Context, chatID, date int64, msg domain.Message) error
}

var _ Backend = telegram.Client(nil)

// Result summarises one reconciliation.
type Result struct {
	Existing int     // scheduled messages found in the chat
	Skipped  []int64 // target times already covered
	Sent     []int64 // target times submitted
}

// Reconciler schedules missing messages through a Backend. The chat list
// is reloaded at most once per Reconciler, not once per Reconcile call.
type Reconciler struct {
	backend     Backend
	logger      *zap.Logger
	chatsLoaded bool
}

func NewReconciler(backend Backend, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{backend: backend, logger: logger}
}

// Reconcile removes from target every time already covered by a message
// scheduled in chatID, then schedules what is left. target is modified in
// place. A failed submission does not stop the others; all failures are
// returned together.
func (r *Reconciler) Reconcile(ctx context.Context, target domain.ScheduleRequest, chatID int64) (Result, error) {
	existing, err := r.existing(ctx, chatID)
	if err != nil {
		return Result{}, err
	}

	res := Result{Existing: len(existing)}
	res.Skipped = Prune(target, existing, Tolerance)
	for _, ts := range res.Skipped {
		r.logger.Info("Already scheduled", zap.Int64("chat_id", chatID), zap.Time("at", time.Unix(ts, 0)))
	}

	var errs error
	for _, ts := range sortedTimes(target) {
		if err := r.backend.SendScheduled(ctx, chatID, ts, target[ts]); err != nil {
			r.logger.Error("Failed to schedule message",
				zap.Int64("chat_id", chatID),
				zap.Time("at", time.Unix(ts, 0)),
				zap.Error(err),
			)
			errs = multierr.Append(errs, err)
			continue
		}
		r.logger.Info("Scheduled message", zap.Int64("chat_id", chatID), zap.Time("at", time.Unix(ts, 0)))
		res.Sent = append(res.Sent, ts)
	}
	return res, errs
}

// existing fetches the chat's scheduled messages. Scheduled messages stay
// invisible until the chat list has been paged in, so an empty answer on a
// cold cache triggers one reload and one retry.
func (r *Reconciler) existing(ctx context.Context, chatID int64) ([]domain.ScheduledMessage, error) {
	msgs, err := r.backend.ScheduledMessages(ctx, chatID)
	if err != nil && !errors.Is(err, telegram.ErrChatNotFound) {
		return nil, fmt.Errorf("list scheduled messages: %w", err)
	}
	if len(msgs) > 0 || r.chatsLoaded {
		if err != nil {
			return nil, fmt.Errorf("list scheduled messages: %w", err)
		}
		return msgs, nil
	}

	r.logger.Info("No scheduled messages visible, reloading chat list", zap.Int64("chat_id", chatID))
	if err := r.backend.LoadChats(ctx); err != nil {
		return nil, fmt.Errorf("reload chats: %w", err)
	}
	r.chatsLoaded = true

	msgs, err = r.backend.ScheduledMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list scheduled messages: %w", err)
	}
	return msgs, nil
}

// Prune deletes from target every time within tol of an existing message,
// whatever its text, and returns the deleted times in ascending order.
func Prune(target domain.ScheduleRequest, existing []domain.ScheduledMessage, tol time.Duration) []int64 {
	window := int64(tol / time.Second)
	var removed []int64
	for ts := range target {
		for _, m := range existing {
			if abs(m.Date-ts) <= window {
				delete(target, ts)
				removed = append(removed, ts)
				break
			}
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed
}

func sortedTimes(target domain.ScheduleRequest) []int64 {
	out := make([]int64, 0, len(target))
	for ts := range target {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
