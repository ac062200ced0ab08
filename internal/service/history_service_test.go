package service

import (
	"context"
	"testing"
	"time"

	"blocknote-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newHistoryServiceFixture() (*historyService, *mockUnitOfWork) {
	uow := newMockUnitOfWork()
	svc := NewHistoryService(&mockFactory{uow: uow}, noopLogger{}).(*historyService)
	return svc, uow
}

func titledProps(text string) map[string]interface{} {
	return map[string]interface{}{
		"title": []interface{}{[]interface{}{text}},
	}
}

func TestHistoryServiceRejectsMissingIds(t *testing.T) {
	svc, uow := newHistoryServiceFixture()
	ctx := context.Background()

	_, err := svc.GetPageHistory(ctx, uuid.Nil, uuid.New(), 1, 20)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetTimelineEntries(ctx, uuid.New(), uuid.Nil, 50)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetPageAtHistory(ctx, uuid.New(), uuid.New(), 0)
	assert.ErrorIs(t, err, ErrValidation)

	uow.pages.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
	uow.history.AssertNotCalled(t, "FindByIdForPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryServicePageHistoryPagination(t *testing.T) {
	svc, uow := newHistoryServiceFixture()
	ctx := context.Background()
	userId := uuid.New()
	pageId := uuid.New()

	uow.pages.On("FindOne", mock.Anything, mock.Anything).Return(&entity.Page{Id: pageId, UserId: userId}, nil)
	uow.history.On("CountByPage", mock.Anything, pageId, userId).Return(int64(45), nil)
	uow.history.On("FindPageHistory", mock.Anything, pageId, userId, 20, 20).Return([]*entity.BlockHistoryDetail{}, nil)

	resp, err := svc.GetPageHistory(ctx, userId, pageId, 2, 20)

	assert.NoError(t, err)
	assert.Equal(t, int64(45), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Empty(t, resp.History)
}

func TestHistoryServicePageHistoryEmptyPage(t *testing.T) {
	svc, uow := newHistoryServiceFixture()
	ctx := context.Background()
	userId := uuid.New()
	pageId := uuid.New()

	uow.pages.On("FindOne", mock.Anything, mock.Anything).Return(&entity.Page{Id: pageId, UserId: userId}, nil)
	uow.history.On("CountByPage", mock.Anything, pageId, userId).Return(int64(0), nil)
	uow.history.On("FindPageHistory", mock.Anything, pageId, userId, 20, 0).Return([]*entity.BlockHistoryDetail{}, nil)

	resp, err := svc.GetPageHistory(ctx, userId, pageId, 1, 20)

	// Zero records is a valid result, not an error.
	assert.NoError(t, err)
	assert.Equal(t, int64(0), resp.Total)
	assert.Equal(t, 0, resp.TotalPages)
}

func TestHistoryServiceCrossOwnerLooksLikeMissing(t *testing.T) {
	svc, uow := newHistoryServiceFixture()

	uow.pages.On("FindOne", mock.Anything, mock.Anything).Return(nil, nil)

	_, err := svc.GetPageHistory(context.Background(), uuid.New(), uuid.New(), 1, 20)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimelineEntryFromSnapshot(t *testing.T) {
	blockType := "paragraph"
	record := &entity.BlockHistoryDetail{
		BlockHistory: entity.BlockHistory{
			Id:        7,
			Operation: entity.HistoryOperationSnapshot,
			CreatedAt: time.Now(),
			SnapshotData: &entity.PageSnapshot{
				Blocks: []entity.BlockSnapshot{
					{Type: "heading", Properties: titledProps("My Page")},
					{Type: "paragraph"},
					{Type: "list"},
					{Type: "quote"},
				},
			},
		},
		BlockType: &blockType,
	}

	entry := buildTimelineEntry(record)

	assert.Equal(t, "Saved", entry.OperationText)
	assert.Equal(t, "My Page", entry.PreviewContent)
	assert.Equal(t, []string{"heading", "paragraph", "list"}, entry.Preview)
	assert.True(t, entry.HasSnapshot)
}

func TestTimelineEntryFromEmptySnapshot(t *testing.T) {
	record := &entity.BlockHistoryDetail{
		BlockHistory: entity.BlockHistory{
			Id:           8,
			Operation:    entity.HistoryOperationSnapshot,
			CreatedAt:    time.Now(),
			SnapshotData: &entity.PageSnapshot{Blocks: []entity.BlockSnapshot{}},
		},
	}

	entry := buildTimelineEntry(record)

	assert.Equal(t, "Saved", entry.OperationText)
	assert.True(t, entry.HasSnapshot)
	assert.Empty(t, entry.Preview)
	assert.Empty(t, entry.PreviewContent)
}

func TestTimelineEntryFromUpdateDiff(t *testing.T) {
	record := &entity.BlockHistoryDetail{
		BlockHistory: entity.BlockHistory{
			Id:        8,
			Operation: entity.HistoryOperationUpdate,
			CreatedAt: time.Now(),
			BlockData: map[string]interface{}{
				"old": map[string]interface{}{"type": "paragraph", "properties": titledProps("old text")},
				"new": map[string]interface{}{"type": "paragraph", "properties": titledProps("new text")},
			},
		},
	}

	entry := buildTimelineEntry(record)

	assert.Equal(t, "Updated", entry.OperationText)
	assert.Equal(t, "new text", entry.PreviewContent)
	assert.Equal(t, []string{"paragraph"}, entry.Preview)
	assert.False(t, entry.HasSnapshot)
	assert.True(t, entry.HasBlockData)
}

func TestTimelineEntryFromDeleteRecord(t *testing.T) {
	record := &entity.BlockHistoryDetail{
		BlockHistory: entity.BlockHistory{
			Id:        9,
			Operation: entity.HistoryOperationDelete,
			CreatedAt: time.Now(),
			BlockData: map[string]interface{}{
				"type":       "quote",
				"properties": titledProps("gone"),
			},
		},
	}

	entry := buildTimelineEntry(record)

	assert.Equal(t, "Deleted", entry.OperationText)
	assert.Equal(t, "gone", entry.PreviewContent)
	assert.Equal(t, []string{"quote"}, entry.Preview)
}

func TestTimelineEntryToleratesMalformedTitle(t *testing.T) {
	record := &entity.BlockHistoryDetail{
		BlockHistory: entity.BlockHistory{
			Id:        10,
			Operation: entity.HistoryOperationUpdate,
			CreatedAt: time.Now(),
			BlockData: map[string]interface{}{
				"new": map[string]interface{}{
					"type":       "paragraph",
					"properties": map[string]interface{}{"title": "not-a-nested-array"},
				},
			},
		},
	}

	entry := buildTimelineEntry(record)
	assert.Equal(t, "", entry.PreviewContent)
}

func TestGetPageAtHistoryReplaysSnapshotExactly(t *testing.T) {
	svc, uow := newHistoryServiceFixture()
	ctx := context.Background()
	userId := uuid.New()
	pageId := uuid.New()
	savedAt := time.Now().Add(-time.Hour)

	uow.pages.On("FindOne", mock.Anything, mock.Anything).Return(&entity.Page{
		Id: pageId, UserId: userId, Title: "My Page", Icon: "📄",
	}, nil)
	uow.history.On("FindByIdForPage", mock.Anything, int64(42), pageId, userId).Return(&entity.BlockHistory{
		Id:        42,
		Operation: entity.HistoryOperationSnapshot,
		CreatedAt: savedAt,
		SnapshotData: &entity.PageSnapshot{
			Blocks: []entity.BlockSnapshot{
				{Id: uuid.NewString(), Type: "heading", Properties: titledProps("old title"), OrderIndex: 0},
				{Id: uuid.NewString(), Type: "paragraph", Properties: titledProps("old body"), OrderIndex: 1},
			},
		},
	}, nil)

	resp, err := svc.GetPageAtHistory(ctx, userId, pageId, 42)

	assert.NoError(t, err)
	assert.True(t, resp.IsFullSnapshot)
	assert.True(t, resp.IsHistorical)
	assert.Equal(t, savedAt, resp.SnapshotTime)
	assert.Len(t, resp.Blocks, 2)
	assert.Equal(t, "old title", resp.Blocks[0].Properties["title"].([]interface{})[0].([]interface{})[0])

	// Snapshot replay never touches the live block table.
	uow.blocks.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestGetPageAtHistoryReplaysEmptySnapshot(t *testing.T) {
	svc, uow := newHistoryServiceFixture()
	ctx := context.Background()
	userId := uuid.New()
	pageId := uuid.New()

	uow.pages.On("FindOne", mock.Anything, mock.Anything).Return(&entity.Page{
		Id: pageId, UserId: userId, Title: "My Page",
	}, nil)
	// The page was cleared with a bulk save; the snapshot of that
	// moment holds zero blocks.
	uow.history.On("FindByIdForPage", mock.Anything, int64(44), pageId, userId).Return(&entity.BlockHistory{
		Id:           44,
		Operation:    entity.HistoryOperationSnapshot,
		SnapshotData: &entity.PageSnapshot{Blocks: []entity.BlockSnapshot{}},
	}, nil)

	resp, err := svc.GetPageAtHistory(ctx, userId, pageId, 44)

	assert.NoError(t, err)
	assert.True(t, resp.IsFullSnapshot)
	assert.Empty(t, resp.Blocks)

	// The empty page replays as-is; the blocks written since must not
	// leak into the historical view.
	uow.blocks.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestGetPageAtHistoryFallsBackToLiveBlocks(t *testing.T) {
	svc, uow := newHistoryServiceFixture()
	ctx := context.Background()
	userId := uuid.New()
	pageId := uuid.New()

	uow.pages.On("FindOne", mock.Anything, mock.Anything).Return(&entity.Page{
		Id: pageId, UserId: userId, Title: "My Page",
	}, nil)
	uow.history.On("FindByIdForPage", mock.Anything, int64(43), pageId, userId).Return(&entity.BlockHistory{
		Id:        43,
		Operation: entity.HistoryOperationUpdate,
		CreatedAt: time.Now(),
		BlockData: map[string]interface{}{"new": map[string]interface{}{"type": "paragraph"}},
	}, nil)
	uow.blocks.On("FindAll", mock.Anything, mock.Anything).Return([]*entity.Block{
		{Id: uuid.New(), Type: "paragraph", Properties: titledProps("current"), OrderIndex: 0},
	}, nil)

	resp, err := svc.GetPageAtHistory(ctx, userId, pageId, 43)

	assert.NoError(t, err)
	assert.False(t, resp.IsFullSnapshot)
	assert.Len(t, resp.Blocks, 1)
	assert.Equal(t, "paragraph", resp.Blocks[0].Type)
}

func TestGetPageAtHistoryMissingRecord(t *testing.T) {
	svc, uow := newHistoryServiceFixture()
	ctx := context.Background()
	userId := uuid.New()
	pageId := uuid.New()

	uow.pages.On("FindOne", mock.Anything, mock.Anything).Return(&entity.Page{Id: pageId, UserId: userId}, nil)
	uow.history.On("FindByIdForPage", mock.Anything, int64(99), pageId, userId).Return(nil, nil)

	_, err := svc.GetPageAtHistory(ctx, userId, pageId, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRecentSnapshots(t *testing.T) {
	svc, uow := newHistoryServiceFixture()
	ctx := context.Background()
	userId := uuid.New()
	pageId := uuid.New()

	uow.pages.On("FindOne", mock.Anything, mock.Anything).Return(&entity.Page{Id: pageId, UserId: userId}, nil)
	uow.history.On("FindSnapshots", mock.Anything, pageId, userId, 10).Return([]*entity.BlockHistory{
		{
			Id:        5,
			Operation: entity.HistoryOperationSnapshot,
			CreatedAt: time.Now(),
			SnapshotData: &entity.PageSnapshot{
				Blocks: []entity.BlockSnapshot{
					{Type: "heading"}, {Type: "paragraph"}, {Type: "list"}, {Type: "quote"},
				},
				ChangeCount: 2,
			},
		},
	}, nil)

	entries, err := svc.GetRecentSnapshots(ctx, userId, pageId, 0)

	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].BlockCount)
	assert.Equal(t, 2, entries[0].ChangeCount)
	assert.Equal(t, []string{"heading", "paragraph", "list"}, entries[0].Preview)
}
