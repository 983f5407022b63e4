package repositories

import (
	"time"

	"nxdndash/internal/database/models"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HeardRepository stores and queries archived transmissions
type HeardRepository interface {
	CreateBatch(records []*models.HeardRecord) (int64, error)
	FindRecent(limit int, callsign string) ([]*models.HeardRecord, error)
	Count() (int64, error)
	DeleteOlderThan(cutoff time.Time, batchSize int) (int64, error)
}

type heardRepo struct {
	db     *gorm.DB
	logger *pterm.Logger
}

// NewHeardRepository creates a new heard record repository
func NewHeardRepository(db *gorm.DB, logger *pterm.Logger) HeardRepository {
	return &heardRepo{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts records, skipping any whose hash is already stored, and
// returns how many rows were written
func (r *heardRepo) CreateBatch(records []*models.HeardRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	for _, record := range records {
		if record.RecordHash == "" {
			record.RecordHash = models.HashHeardRecord(record.Timestamp, record.Callsign)
		}
	}

	// SQLite caps bound variables per statement at 32766
	const MaxSQLiteVariables = 32766
	const ColumnsPerRecord = 7 // HeardRecord columns bound on insert
	const MaxRecordsPerBatch = MaxSQLiteVariables / ColumnsPerRecord

	if len(records) > MaxRecordsPerBatch {
		r.logger.Debug("Splitting large batch to avoid variable limit",
			r.logger.Args("total_records", len(records), "max_per_batch", MaxRecordsPerBatch))
	}

	var inserted int64
	for i := 0; i < len(records); i += MaxRecordsPerBatch {
		end := i + MaxRecordsPerBatch
		if end > len(records) {
			end = len(records)
		}

		rows, err := r.insertSubBatch(records[i:end])
		if err != nil {
			r.logger.WithCaller().Error("Failed to insert heard records",
				r.logger.Args("batch_num", (i/MaxRecordsPerBatch)+1, "count", end-i, "error", err))
			return inserted, err
		}
		inserted += rows
	}

	if skipped := int64(len(records)) - inserted; skipped > 0 {
		r.logger.Trace("Skipped already archived transmissions", r.logger.Args("skipped", skipped))
	}
	return inserted, nil
}

// insertSubBatch inserts one chunk that fits within the SQLite variable limit
func (r *heardRepo) insertSubBatch(records []*models.HeardRecord) (int64, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_hash"}},
		DoNothing: true,
	}).Create(&records)
	return result.RowsAffected, result.Error
}

// FindRecent returns archived transmissions newest first, optionally for one
// callsign
func (r *heardRepo) FindRecent(limit int, callsign string) ([]*models.HeardRecord, error) {
	var records []*models.HeardRecord
	query := r.db.Order("timestamp DESC").Order("id DESC")

	if callsign != "" {
		query = query.Where("callsign = ?", callsign)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		r.logger.WithCaller().Error("Failed to find heard records",
			r.logger.Args("callsign", callsign, "error", err))
		return nil, err
	}

	r.logger.Trace("Found heard records", r.logger.Args("count", len(records), "limit", limit, "callsign", callsign))
	return records, nil
}

// Count returns the number of archived transmissions
func (r *heardRepo) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.HeardRecord{}).Count(&count).Error; err != nil {
		r.logger.WithCaller().Error("Failed to count heard records", r.logger.Args("error", err))
		return 0, err
	}
	return count, nil
}

// DeleteOlderThan removes records before cutoff in batches
func (r *heardRepo) DeleteOlderThan(cutoff time.Time, batchSize int) (int64, error) {
	var total int64
	for {
		result := r.db.Exec(`
			DELETE FROM heard_records
			WHERE id IN (
				SELECT id FROM heard_records
				WHERE timestamp < ?
				LIMIT ?
			)
		`, cutoff, batchSize)
		if result.Error != nil {
			return total, result.Error
		}

		total += result.RowsAffected
		if result.RowsAffected == 0 {
			return total, nil
		}

		r.logger.Trace("Deleted batch",
			r.logger.Args("batch_deleted", result.RowsAffected, "total_deleted", total))
	}
}
