package usecases

import (
	"context"
	"fmt"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/logger"
	"github.com/mentora-inc/mentora/internal/shared/mapper"
)

const defaultEventLimit = 50

type ListSubscriptionEventsCommand struct {
	SubscriptionSID string
	Limit           int
}

type ListSubscriptionEventsUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	eventRepo        billing.SubscriptionEventRepository
	logger           logger.Interface
}

func NewListSubscriptionEventsUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	eventRepo billing.SubscriptionEventRepository,
	logger logger.Interface,
) *ListSubscriptionEventsUseCase {
	return &ListSubscriptionEventsUseCase{
		subscriptionRepo: subscriptionRepo,
		eventRepo:        eventRepo,
		logger:           logger,
	}
}

func (uc *ListSubscriptionEventsUseCase) Execute(ctx context.Context, cmd ListSubscriptionEventsCommand) ([]*dto.SubscriptionEventDTO, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}

	limit := cmd.Limit
	if limit <= 0 || limit > defaultEventLimit {
		limit = defaultEventLimit
	}

	events, err := uc.eventRepo.ListBySubscriptionID(ctx, sub.ID(), limit)
	if err != nil {
		uc.logger.Errorw("failed to list events", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return mapper.MapSlicePtr(events, dto.ToSubscriptionEventDTO), nil
}
