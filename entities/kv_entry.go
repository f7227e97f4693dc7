package entities

import "time"

// KVEntry backs the key-value persistence primitive. One row per named JSON
// blob, last write wins.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:jsonb" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
