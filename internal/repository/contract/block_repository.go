package contract

import (
	"context"

	"blocknote-be/internal/entity"
	"blocknote-be/internal/repository/specification"

	"github.com/google/uuid"
)

type BlockRepository interface {
	Create(ctx context.Context, block *entity.Block) error
	Update(ctx context.Context, block *entity.Block) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByPageId hard-deletes every block of a page; the bulk save
	// path replaces the whole set in one transaction.
	DeleteByPageId(ctx context.Context, pageId uuid.UUID) error
	UpdateOrderIndex(ctx context.Context, pageId, blockId uuid.UUID, orderIndex int) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Block, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Block, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
