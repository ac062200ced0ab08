package service

import (
	"context"
	"time"

	"blocknote-be/internal/dto"
	"blocknote-be/internal/entity"
	"blocknote-be/internal/repository/contract"
	"blocknote-be/internal/repository/specification"
	"blocknote-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func watermillMessage(payload string) *message.Message {
	return message.NewMessage(watermill.NewUUID(), []byte(payload))
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// mockFactory hands the same unit of work to every caller so tests can
// assert against one set of repository mocks.
type mockFactory struct {
	uow *mockUnitOfWork
}

func (f *mockFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type mockUnitOfWork struct {
	mock.Mock
	users   *mockUserRepository
	pages   *mockPageRepository
	blocks  *mockBlockRepository
	history *mockBlockHistoryRepository
}

func newMockUnitOfWork() *mockUnitOfWork {
	return &mockUnitOfWork{
		users:   &mockUserRepository{},
		pages:   &mockPageRepository{},
		blocks:  &mockBlockRepository{},
		history: &mockBlockHistoryRepository{},
	}
}

func (u *mockUnitOfWork) Begin(ctx context.Context) error {
	return u.Called(ctx).Error(0)
}

func (u *mockUnitOfWork) Commit() error {
	return u.Called().Error(0)
}

func (u *mockUnitOfWork) Rollback() error {
	return u.Called().Error(0)
}

func (u *mockUnitOfWork) UserRepository() contract.UserRepository { return u.users }

func (u *mockUnitOfWork) PageRepository() contract.PageRepository { return u.pages }

func (u *mockUnitOfWork) BlockRepository() contract.BlockRepository { return u.blocks }

func (u *mockUnitOfWork) BlockHistoryRepository() contract.BlockHistoryRepository {
	return u.history
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	args := m.Called(ctx, specs)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	args := m.Called(ctx, specs)
	return args.Get(0).(int64), args.Error(1)
}

type mockPageRepository struct {
	mock.Mock
}

func (m *mockPageRepository) Create(ctx context.Context, page *entity.Page) error {
	return m.Called(ctx, page).Error(0)
}

func (m *mockPageRepository) Update(ctx context.Context, page *entity.Page) error {
	return m.Called(ctx, page).Error(0)
}

func (m *mockPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPageRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Page, error) {
	args := m.Called(ctx, specs)
	page, _ := args.Get(0).(*entity.Page)
	return page, args.Error(1)
}

func (m *mockPageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Page, error) {
	args := m.Called(ctx, specs)
	pages, _ := args.Get(0).([]*entity.Page)
	return pages, args.Error(1)
}

func (m *mockPageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	args := m.Called(ctx, specs)
	return args.Get(0).(int64), args.Error(1)
}

type mockBlockRepository struct {
	mock.Mock
}

func (m *mockBlockRepository) Create(ctx context.Context, block *entity.Block) error {
	return m.Called(ctx, block).Error(0)
}

func (m *mockBlockRepository) Update(ctx context.Context, block *entity.Block) error {
	return m.Called(ctx, block).Error(0)
}

func (m *mockBlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBlockRepository) DeleteByPageId(ctx context.Context, pageId uuid.UUID) error {
	return m.Called(ctx, pageId).Error(0)
}

func (m *mockBlockRepository) UpdateOrderIndex(ctx context.Context, pageId, blockId uuid.UUID, orderIndex int) error {
	return m.Called(ctx, pageId, blockId, orderIndex).Error(0)
}

func (m *mockBlockRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Block, error) {
	args := m.Called(ctx, specs)
	block, _ := args.Get(0).(*entity.Block)
	return block, args.Error(1)
}

func (m *mockBlockRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Block, error) {
	args := m.Called(ctx, specs)
	blocks, _ := args.Get(0).([]*entity.Block)
	return blocks, args.Error(1)
}

func (m *mockBlockRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	args := m.Called(ctx, specs)
	return args.Get(0).(int64), args.Error(1)
}

type mockBlockHistoryRepository struct {
	mock.Mock
}

func (m *mockBlockHistoryRepository) Create(ctx context.Context, record *entity.BlockHistory) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockBlockHistoryRepository) FindByIdForPage(ctx context.Context, historyId int64, pageId, userId uuid.UUID) (*entity.BlockHistory, error) {
	args := m.Called(ctx, historyId, pageId, userId)
	record, _ := args.Get(0).(*entity.BlockHistory)
	return record, args.Error(1)
}

func (m *mockBlockHistoryRepository) FindPageHistory(ctx context.Context, pageId, userId uuid.UUID, limit, offset int) ([]*entity.BlockHistoryDetail, error) {
	args := m.Called(ctx, pageId, userId, limit, offset)
	records, _ := args.Get(0).([]*entity.BlockHistoryDetail)
	return records, args.Error(1)
}

func (m *mockBlockHistoryRepository) FindTimeline(ctx context.Context, pageId, userId uuid.UUID, limit int) ([]*entity.BlockHistoryDetail, error) {
	args := m.Called(ctx, pageId, userId, limit)
	records, _ := args.Get(0).([]*entity.BlockHistoryDetail)
	return records, args.Error(1)
}

func (m *mockBlockHistoryRepository) FindSnapshots(ctx context.Context, pageId, userId uuid.UUID, limit int) ([]*entity.BlockHistory, error) {
	args := m.Called(ctx, pageId, userId, limit)
	records, _ := args.Get(0).([]*entity.BlockHistory)
	return records, args.Error(1)
}

func (m *mockBlockHistoryRepository) CountByPage(ctx context.Context, pageId, userId uuid.UUID) (int64, error) {
	args := m.Called(ctx, pageId, userId)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBlockHistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, userId *uuid.UUID) (int64, error) {
	args := m.Called(ctx, cutoff, userId)
	return args.Get(0).(int64), args.Error(1)
}

// recorderSpy captures recorder calls so block service tests can assert
// what would have been published without a running bus.
type recorderSpy struct {
	creates   []*entity.Block
	updates   [][2]*entity.Block
	snapshots []*entity.PageSnapshot
}

func (r *recorderSpy) RecordBlockCreate(ctx context.Context, userId, pageId uuid.UUID, block *entity.Block) {
	r.creates = append(r.creates, block)
}

func (r *recorderSpy) RecordBlockUpdate(ctx context.Context, userId, pageId uuid.UUID, oldBlock, newBlock *entity.Block) {
	r.updates = append(r.updates, [2]*entity.Block{oldBlock, newBlock})
}

func (r *recorderSpy) RecordPageSnapshot(ctx context.Context, userId, pageId uuid.UUID, previous, current []*entity.Block) {
	r.snapshots = append(r.snapshots, &entity.PageSnapshot{
		PageId:      pageId,
		UserId:      userId,
		Blocks:      ToBlockSnapshots(current),
		SavedAt:     time.Now(),
		ChangeCount: countChangedBlocks(previous, current),
	})
}

type notifierSpy struct {
	events []dto.ActivityEvent
}

func (n *notifierSpy) SendActivity(userId uuid.UUID, event dto.ActivityEvent) {
	n.events = append(n.events, event)
}
