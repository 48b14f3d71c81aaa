package usecases

import (
	"context"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
)

// TransactionManager binds a subscription mutation and its audit event into
// one atomic unit. The context passed to fn carries the transaction; the
// repositories pick it up automatically.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PlanCatalogCache caches the public active-plan listing. Misses and cache
// failures both fall through to the repository; writes invalidate.
type PlanCatalogCache interface {
	GetActivePlans(ctx context.Context) ([]*dto.PlanDTO, bool)
	SetActivePlans(ctx context.Context, plans []*dto.PlanDTO)
	Invalidate(ctx context.Context)
}
