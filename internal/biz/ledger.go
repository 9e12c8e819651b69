package biz

import (
	"context"
	"time"
)

// LedgerEntry 账本流水（追加写，余额的唯一事实来源）
// Amount 为正表示用户收入（佣金/任务收益），为负表示支出（购买/续费/升级）。
type LedgerEntry struct {
	ID             uint64
	UserID         uint64
	Type           string // purchase, membership_renewal, membership_upgrade, commission, task_earning
	Amount         int64
	IdempotencyKey string
	Metadata       map[string]string
	CreatedAt      time.Time
}

// LedgerRepo 账本仓库接口
type LedgerRepo interface {
	// AppendEntry 追加一条流水。幂等键冲突时返回已存在的流水，不报错。
	AppendEntry(ctx context.Context, entry *LedgerEntry) (*LedgerEntry, error)
	// GetEntryByIdempotencyKey 按幂等键查询流水，不存在时返回 (nil, nil)
	GetEntryByIdempotencyKey(ctx context.Context, key string) (*LedgerEntry, error)
	// SumLifetimeEarnings 统计用户终身收益总额（佣金 + 任务收益）
	SumLifetimeEarnings(ctx context.Context, userID uint64) (int64, error)
	// ListAcquisitionsSince 查询指定时间之后的购买/升级流水（佣金对账回放用）
	ListAcquisitionsSince(ctx context.Context, since time.Time) ([]*LedgerEntry, error)
}
