// Package kvstore is the string-keyed persistence layer. Each logical
// collection is a single JSON array stored under one key.
package kvstore

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

type Store interface {
	// Get reports ok=false when the key has never been written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Record is the SQL row backing one key.
type Record struct {
	Key       string         `gorm:"column:record_key;primaryKey;size:191" json:"key"`
	Value     datatypes.JSON `gorm:"column:value;not null" json:"value"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Record) TableName() string { return "kv_record" }
