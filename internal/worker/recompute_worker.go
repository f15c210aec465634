package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/kudiapp/kudi-backend/internal/amqp"
	"github.com/kudiapp/kudi-backend/internal/service"
	"github.com/kudiapp/kudi-backend/internal/util"
)

// RecomputeWorker consumes recompute messages and refreshes derived caches.
// All operations are idempotent recalculations from current database state,
// so redelivered messages are safe.
type RecomputeWorker struct {
	client          *amqp.Client
	budgetService   *service.BudgetService
	babyStepService *service.BabyStepService
}

// NewRecomputeWorker creates a new RecomputeWorker
func NewRecomputeWorker(client *amqp.Client, budgetService *service.BudgetService, babyStepService *service.BabyStepService) *RecomputeWorker {
	return &RecomputeWorker{
		client:          client,
		budgetService:   budgetService,
		babyStepService: babyStepService,
	}
}

// Run consumes messages until ctx is cancelled
func (w *RecomputeWorker) Run(ctx context.Context) error {
	return w.client.Consume(ctx, w.handle)
}

func (w *RecomputeWorker) handle(ctx context.Context, msg *amqp.RecomputeMessage) error {
	switch msg.Kind {
	case amqp.RecomputeKindBudget:
		return w.handleBudget(ctx, msg)
	case amqp.RecomputeKindProgress:
		_, err := w.babyStepService.Recalculate(ctx, msg.UserID)
		return err
	default:
		// Unknown kinds are dropped, not requeued
		log.Warn().Str("kind", string(msg.Kind)).Msg("Ignoring recompute message of unknown kind")
		return nil
	}
}

// handleBudget refreshes the spent cache for both budgets the transaction date
// can fall into, the monthly one and the weekly one. Missing budgets are
// no-ops inside RecomputeSpent.
func (w *RecomputeWorker) handleBudget(ctx context.Context, msg *amqp.RecomputeMessage) error {
	if msg.CategoryID == nil || msg.Date == nil {
		log.Warn().Str("user_id", msg.UserID.String()).Msg("Dropping budget recompute message without category or date")
		return nil
	}

	for _, periodKey := range []string{util.MonthlyKey(*msg.Date), util.WeeklyKey(*msg.Date)} {
		if err := w.budgetService.RecomputeSpent(ctx, msg.UserID, *msg.CategoryID, periodKey); err != nil {
			return fmt.Errorf("recompute spent for period %s: %w", periodKey, err)
		}
	}
	return nil
}
