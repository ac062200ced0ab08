package mapper

import (
	"testing"

	"blocknote-be/internal/entity"
	"blocknote-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestDecodeJSONMapDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		data datatypes.JSON
	}{
		{name: "nil payload", data: nil},
		{name: "empty payload", data: datatypes.JSON("")},
		{name: "malformed json", data: datatypes.JSON(`{"broken`)},
		{name: "json null", data: datatypes.JSON(`null`)},
		{name: "wrong shape", data: datatypes.JSON(`[1,2,3]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeJSONMap(tt.data)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestDecodeJSONMapKeepsValidPayload(t *testing.T) {
	got := decodeJSONMap(datatypes.JSON(`{"title":[["hello"]],"checked":true}`))
	assert.Equal(t, true, got["checked"])
	assert.NotEmpty(t, got["title"])
}

func TestDecodeSnapshot(t *testing.T) {
	t.Run("empty object yields nil", func(t *testing.T) {
		assert.Nil(t, decodeSnapshot(datatypes.JSON(`{}`)))
	})

	t.Run("malformed yields nil", func(t *testing.T) {
		assert.Nil(t, decodeSnapshot(datatypes.JSON(`{"blocks":`)))
	})

	t.Run("zero blocks survives", func(t *testing.T) {
		// A page saved empty still has a snapshot; only the absent
		// blocks key marks a diff record.
		snap := decodeSnapshot(datatypes.JSON(`{"blocks":[]}`))
		assert.NotNil(t, snap)
		assert.NotNil(t, snap.Blocks)
		assert.Empty(t, snap.Blocks)
	})

	t.Run("valid snapshot survives", func(t *testing.T) {
		snap := decodeSnapshot(datatypes.JSON(`{"blocks":[{"id":"b1","type":"paragraph","order_index":0}],"change_count":2}`))
		assert.NotNil(t, snap)
		assert.Len(t, snap.Blocks, 1)
		assert.Equal(t, "paragraph", snap.Blocks[0].Type)
		assert.Equal(t, 2, snap.ChangeCount)
	})
}

func TestBlockHistoryMapperRoundTripsSnapshot(t *testing.T) {
	m := NewBlockHistoryMapper()

	original := &entity.BlockHistory{
		Id:        1,
		UserId:    uuid.New(),
		PageId:    uuid.New(),
		Operation: entity.HistoryOperationSnapshot,
		SnapshotData: &entity.PageSnapshot{
			Blocks: []entity.BlockSnapshot{
				{Id: "b1", Type: "heading", Properties: map[string]interface{}{"title": []interface{}{[]interface{}{"t"}}}, OrderIndex: 0},
				{Id: "b2", Type: "paragraph", OrderIndex: 1},
			},
			ChangeCount: 2,
		},
	}

	got := m.ToEntity(m.ToModel(original))

	assert.Equal(t, original.Operation, got.Operation)
	assert.NotNil(t, got.SnapshotData)
	assert.Len(t, got.SnapshotData.Blocks, 2)
	assert.Equal(t, "b1", got.SnapshotData.Blocks[0].Id)
	assert.Equal(t, "heading", got.SnapshotData.Blocks[0].Type)
	assert.Equal(t, 2, got.SnapshotData.ChangeCount)
}

func TestBlockHistoryMapperRoundTripsEmptySnapshot(t *testing.T) {
	m := NewBlockHistoryMapper()

	original := &entity.BlockHistory{
		Id:        2,
		UserId:    uuid.New(),
		PageId:    uuid.New(),
		Operation: entity.HistoryOperationSnapshot,
		SnapshotData: &entity.PageSnapshot{
			Blocks:      []entity.BlockSnapshot{},
			ChangeCount: 1,
		},
	}

	got := m.ToEntity(m.ToModel(original))

	assert.True(t, got.SnapshotData.HasSnapshot())
	assert.Empty(t, got.SnapshotData.Blocks)
	assert.Equal(t, 1, got.SnapshotData.ChangeCount)
}

func TestBlockMapperToleratesCorruptColumns(t *testing.T) {
	m := NewBlockMapper()

	block := m.ToEntity(&model.Block{
		Id:         uuid.New(),
		Type:       "paragraph",
		Properties: datatypes.JSON(`{"oops`),
		Format:     nil,
	})

	assert.NotNil(t, block.Properties)
	assert.Empty(t, block.Properties)
	assert.NotNil(t, block.Format)
}
