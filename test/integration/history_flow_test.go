package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"blocknote-be/internal/dto"
	"blocknote-be/internal/entity"
	"blocknote-be/internal/pkg/logger"
	"blocknote-be/internal/repository/unitofwork"
	"blocknote-be/internal/service"
	"blocknote-be/pkg/database"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ignoreLogger struct{}

func (ignoreLogger) Debug(module, message string, details map[string]interface{}) {}
func (ignoreLogger) Info(module, message string, details map[string]interface{})  {}
func (ignoreLogger) Warn(module, message string, details map[string]interface{})  {}
func (ignoreLogger) Error(module, message string, details map[string]interface{}) {}
func (ignoreLogger) Sync() error                                                  { return nil }

var _ logger.ILogger = ignoreLogger{}

// TestHistoryFlow drives the whole pipeline against a real database:
// bulk save with history, a block update, a block delete, then reads
// the timeline back and reconstructs the page at the snapshot.
func TestHistoryFlow(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	ctx := context.Background()

	// History pipeline
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()
	recorder := service.NewHistoryRecorder(pubSub, "RECORD_BLOCK_HISTORY_IT", ignoreLogger{})
	writer := service.NewHistoryWriterService(pubSub, "RECORD_BLOCK_HISTORY_IT", uowFactory, nil, ignoreLogger{}, 3)

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go writer.Consume(consumeCtx)
	time.Sleep(100 * time.Millisecond)

	pageService := service.NewPageService(uowFactory, nil, ignoreLogger{})
	blockService := service.NewBlockService(uowFactory, recorder, nil, ignoreLogger{})
	historyService := service.NewHistoryService(uowFactory, ignoreLogger{})
	retentionService := service.NewRetentionService(uowFactory, ignoreLogger{})

	// Test owner
	uow := uowFactory.NewUnitOfWork(ctx)
	userId := uuid.New()
	user := &entity.User{
		Id:        userId,
		Email:     "history-it-" + uuid.NewString() + "@example.com",
		FullName:  "History Flow Test User",
		CreatedAt: time.Now(),
	}
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	defer uow.UserRepository().Delete(ctx, userId)

	page, err := pageService.Create(ctx, userId, &dto.CreatePageRequest{Title: "History Flow Page"})
	require.NoError(t, err)
	defer pageService.Delete(ctx, userId, page.Id)

	// 1. Bulk save with history -> snapshot record
	titled := func(text string) map[string]interface{} {
		return map[string]interface{}{"title": []interface{}{[]interface{}{text}}}
	}
	saved, err := blockService.SaveBlocks(ctx, userId, &dto.SaveBlocksRequest{
		PageId: page.Id,
		Blocks: []dto.BlockInput{
			{Type: "heading", Properties: titled("My Page")},
			{Type: "paragraph", Properties: titled("First paragraph")},
			{Type: "list", Properties: titled("Item one")},
		},
		SaveHistory: true,
	})
	require.NoError(t, err)
	require.Equal(t, 3, saved.Count)

	// 2. Update the paragraph
	newText := titled("Edited paragraph")
	_, err = blockService.Update(ctx, userId, &dto.UpdateBlockRequest{
		Id:         saved.Blocks[1].Id,
		Properties: newText,
	})
	require.NoError(t, err)

	// 3. Delete the list block (synchronous history write)
	require.NoError(t, blockService.Delete(ctx, userId, saved.Blocks[2].Id))

	// Wait for the async records (snapshot + update) to land
	waitUntil(t, func() bool { return writer.RecordedCount() >= 2 })
	assert.Equal(t, int64(0), writer.FailedCount())

	// 4. Timeline: newest first, Deleted then Updated then Saved
	timeline, err := historyService.GetTimelineEntries(ctx, userId, page.Id, 50)
	require.NoError(t, err)
	require.Len(t, timeline, 3)
	assert.Equal(t, "Deleted", timeline[0].OperationText)
	assert.Equal(t, "Updated", timeline[1].OperationText)
	assert.Equal(t, "Saved", timeline[2].OperationText)
	assert.Equal(t, "My Page", timeline[2].PreviewContent)
	assert.Equal(t, []string{"heading", "paragraph", "list"}, timeline[2].Preview)

	// 5. Reconstruct the page at the snapshot record
	pageAt, err := historyService.GetPageAtHistory(ctx, userId, page.Id, timeline[2].Id)
	require.NoError(t, err)
	assert.True(t, pageAt.IsFullSnapshot)
	require.Len(t, pageAt.Blocks, 3)
	assert.Equal(t, "First paragraph", pageAt.Blocks[1].Properties["title"].([]interface{})[0].([]interface{})[0])

	// 6. Diff-only record falls back to current blocks
	pageAtDiff, err := historyService.GetPageAtHistory(ctx, userId, page.Id, timeline[1].Id)
	require.NoError(t, err)
	assert.False(t, pageAtDiff.IsFullSnapshot)
	assert.Len(t, pageAtDiff.Blocks, 2) // list block is gone by now

	// 7. Retention with a generous window removes nothing
	deleted, err := retentionService.CleanupOldHistory(ctx, 365, &userId)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	// 8. Another user cannot see this page's history
	stranger := uuid.New()
	strangerUser := &entity.User{
		Id: stranger, Email: "stranger-" + uuid.NewString() + "@example.com",
		FullName: "Stranger", CreatedAt: time.Now(),
	}
	require.NoError(t, uow.UserRepository().Create(ctx, strangerUser))
	defer uow.UserRepository().Delete(ctx, stranger)

	_, err = historyService.GetTimelineEntries(ctx, stranger, page.Id, 50)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
