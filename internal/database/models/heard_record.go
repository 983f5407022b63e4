package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// HeardRecord is one archived transmission
type HeardRecord struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp       time.Time `gorm:"not null;index:idx_heard_timestamp"`
	Callsign        string    `gorm:"not null;size:20;index:idx_heard_callsign"`
	Target          string    `gorm:"not null"`
	Gateway         string    `gorm:"not null"`
	DurationSeconds int       `gorm:"not null"`
	RecordHash      string    `gorm:"uniqueIndex:idx_heard_record_hash;size:64"` // SHA256 of timestamp+callsign for deduplication
	CreatedAt       time.Time
}

func (HeardRecord) TableName() string {
	return "heard_records"
}

// HashHeardRecord identifies a transmission by its start time and callsign
func HashHeardRecord(timestamp time.Time, callsign string) string {
	sum := sha256.Sum256([]byte(timestamp.UTC().Format(time.RFC3339Nano) + "|" + callsign))
	return hex.EncodeToString(sum[:])
}
