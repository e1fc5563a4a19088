package models

import "time"

// LocalRecord stores one JSON blob of a session's local key-value store.
type LocalRecord struct {
	Namespace string    `gorm:"column:namespace;primaryKey"`
	Key       string    `gorm:"column:record_key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table created by the local_records migration.
func (LocalRecord) TableName() string {
	return "local_records"
}
