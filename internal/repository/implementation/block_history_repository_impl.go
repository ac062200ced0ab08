package implementation

import (
	"context"
	"errors"
	"time"

	"blocknote-be/internal/entity"
	"blocknote-be/internal/mapper"
	"blocknote-be/internal/model"
	"blocknote-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BlockHistoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BlockHistoryMapper
}

func NewBlockHistoryRepository(db *gorm.DB) contract.BlockHistoryRepository {
	return &BlockHistoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewBlockHistoryMapper(),
	}
}

// historyDetailRow is the scan target for listings joined with the
// referenced block's current type and the page title.
type historyDetailRow struct {
	Id           int64          `gorm:"column:id"`
	UserId       uuid.UUID      `gorm:"column:user_id"`
	PageId       uuid.UUID      `gorm:"column:page_id"`
	BlockId      *uuid.UUID     `gorm:"column:block_id"`
	Operation    string         `gorm:"column:operation"`
	BlockData    datatypes.JSON `gorm:"column:block_data"`
	SnapshotData datatypes.JSON `gorm:"column:snapshot_data"`
	CreatedBy    uuid.UUID      `gorm:"column:created_by"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	BlockType    *string        `gorm:"column:block_type"`
	PageTitle    *string        `gorm:"column:page_title"`
}

func (r *BlockHistoryRepositoryImpl) toDetail(row *historyDetailRow) *entity.BlockHistoryDetail {
	record := r.mapper.ToEntity(&model.BlockHistory{
		Id:           row.Id,
		UserId:       row.UserId,
		PageId:       row.PageId,
		BlockId:      row.BlockId,
		Operation:    row.Operation,
		BlockData:    row.BlockData,
		SnapshotData: row.SnapshotData,
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt,
	})

	title := ""
	if row.PageTitle != nil {
		title = *row.PageTitle
	}

	return &entity.BlockHistoryDetail{
		BlockHistory: *record,
		BlockType:    row.BlockType,
		PageTitle:    title,
	}
}

func (r *BlockHistoryRepositoryImpl) Create(ctx context.Context, record *entity.BlockHistory) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *BlockHistoryRepositoryImpl) FindByIdForPage(ctx context.Context, historyId int64, pageId, userId uuid.UUID) (*entity.BlockHistory, error) {
	var m model.BlockHistory
	err := r.db.WithContext(ctx).
		Where("id = ? AND page_id = ? AND user_id = ?", historyId, pageId, userId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BlockHistoryRepositoryImpl) FindPageHistory(ctx context.Context, pageId, userId uuid.UUID, limit, offset int) ([]*entity.BlockHistoryDetail, error) {
	var rows []*historyDetailRow
	err := r.db.WithContext(ctx).
		Table("block_history h").
		Select("h.*, b.type AS block_type, p.title AS page_title").
		Joins("LEFT JOIN blocks b ON h.block_id = b.id").
		Joins("LEFT JOIN pages p ON h.page_id = p.id").
		Where("h.page_id = ? AND h.user_id = ?", pageId, userId).
		Order("h.created_at DESC, h.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	details := make([]*entity.BlockHistoryDetail, len(rows))
	for i, row := range rows {
		details[i] = r.toDetail(row)
	}
	return details, nil
}

func (r *BlockHistoryRepositoryImpl) FindTimeline(ctx context.Context, pageId, userId uuid.UUID, limit int) ([]*entity.BlockHistoryDetail, error) {
	var rows []*historyDetailRow
	err := r.db.WithContext(ctx).
		Table("block_history h").
		Select("h.*, b.type AS block_type, p.title AS page_title").
		Joins("LEFT JOIN blocks b ON h.block_id = b.id").
		Joins("LEFT JOIN pages p ON h.page_id = p.id").
		Where("h.page_id = ? AND h.user_id = ?", pageId, userId).
		Where("(h.snapshot_data IS NOT NULL AND h.snapshot_data::text <> '{}') OR (h.block_data IS NOT NULL AND h.block_data::text <> '{}')").
		Order("h.created_at DESC, h.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	details := make([]*entity.BlockHistoryDetail, len(rows))
	for i, row := range rows {
		details[i] = r.toDetail(row)
	}
	return details, nil
}

func (r *BlockHistoryRepositoryImpl) FindSnapshots(ctx context.Context, pageId, userId uuid.UUID, limit int) ([]*entity.BlockHistory, error) {
	var models []*model.BlockHistory
	err := r.db.WithContext(ctx).
		Where("page_id = ? AND user_id = ? AND operation = ?", pageId, userId, entity.HistoryOperationSnapshot).
		Where("snapshot_data IS NOT NULL AND snapshot_data::text <> '{}'").
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *BlockHistoryRepositoryImpl) CountByPage(ctx context.Context, pageId, userId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.BlockHistory{}).
		Where("page_id = ? AND user_id = ?", pageId, userId).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BlockHistoryRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time, userId *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Where("created_at < ?", cutoff)
	if userId != nil {
		query = query.Where("user_id = ?", *userId)
	}
	result := query.Delete(&model.BlockHistory{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
