package unitofwork

import (
	"context"

	"blocknote-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PageRepository() contract.PageRepository
	BlockRepository() contract.BlockRepository
	BlockHistoryRepository() contract.BlockHistoryRepository
}
