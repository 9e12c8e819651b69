package model

import "time"

// LedgerEntry 账本流水模型（追加写）
type LedgerEntry struct {
	LedgerEntryID  uint64    `gorm:"primaryKey;column:ledger_entry_id;autoIncrement"`
	UserID         uint64    `gorm:"column:user_id;index:idx_user_id;index:idx_user_type"`
	Type           string    `gorm:"column:type;type:varchar(30);index:idx_type;index:idx_user_type"`
	Amount         int64     `gorm:"column:amount;not null"`
	IdempotencyKey string    `gorm:"column:idempotency_key;type:varchar(128);uniqueIndex:uk_idempotency_key"`
	Metadata       string    `gorm:"column:metadata;type:json"` // JSON 字符串
	CreatedAt      time.Time `gorm:"column:created_at;index:idx_created_at"`
}

func (LedgerEntry) TableName() string { return "ledger_entry" }
