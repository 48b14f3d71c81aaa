package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mentora-inc/mentora/internal/domain/billing"
	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/mappers"
	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/models"
	"github.com/mentora-inc/mentora/internal/shared/db"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

// SubscriptionEventRepositoryImpl persists the append-only audit log.
// There is deliberately no update or delete.
type SubscriptionEventRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionEventMapper
	logger logger.Interface
}

func NewSubscriptionEventRepository(gdb *gorm.DB, logger logger.Interface) billing.SubscriptionEventRepository {
	return &SubscriptionEventRepositoryImpl{
		db:     gdb,
		mapper: mappers.NewSubscriptionEventMapper(),
		logger: logger,
	}
}

func (r *SubscriptionEventRepositoryImpl) Append(ctx context.Context, event *billing.SubscriptionEvent) error {
	model, err := r.mapper.ToModel(event)
	if err != nil {
		r.logger.Errorw("failed to map event entity to model", "error", err)
		return fmt.Errorf("failed to map event entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to append subscription event", "error", err, "subscription_id", model.SubscriptionID)
		return fmt.Errorf("failed to append event: %w", err)
	}

	if err := event.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set event ID: %w", err)
	}
	return nil
}

func (r *SubscriptionEventRepositoryImpl) ListBySubscriptionID(ctx context.Context, subscriptionID uint, limit int) ([]*billing.SubscriptionEvent, error) {
	var modelList []*models.SubscriptionEventModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list subscription events", "error", err, "subscription_id", subscriptionID)
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return r.mapper.ToEntities(modelList)
}
