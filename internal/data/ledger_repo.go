package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/umardraz9/mlmpk-sub002/internal/biz"
	"github.com/umardraz9/mlmpk-sub002/internal/constants"
	"github.com/umardraz9/mlmpk-sub002/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// ledgerRepo 账本仓库实现（追加写，幂等键唯一索引判重）
type ledgerRepo struct {
	data *Data
	log  *log.Helper
}

// NewLedgerRepo 创建账本仓库
func NewLedgerRepo(data *Data, logger log.Logger) biz.LedgerRepo {
	return &ledgerRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// AppendEntry 追加一条流水
// 幂等键撞唯一索引时返回已存在的流水，不报错（重试/重放场景）。
func (r *ledgerRepo) AppendEntry(ctx context.Context, entry *biz.LedgerEntry) (*biz.LedgerEntry, error) {
	m, err := toModelEntry(entry)
	if err != nil {
		return nil, err
	}

	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		// 唯一索引冲突说明该幂等键已入账，返回已有流水
		existing, getErr := r.GetEntryByIdempotencyKey(ctx, entry.IdempotencyKey)
		if getErr == nil && existing != nil {
			r.log.Infof("Duplicate ledger entry for key %s, returning existing entry %d", entry.IdempotencyKey, existing.ID)
			return existing, nil
		}
		r.log.Errorf("Failed to append ledger entry for user %d: %v", entry.UserID, err)
		return nil, err
	}

	entry.ID = m.LedgerEntryID
	return entry, nil
}

// GetEntryByIdempotencyKey 按幂等键查询流水，不存在时返回 (nil, nil)
func (r *ledgerRepo) GetEntryByIdempotencyKey(ctx context.Context, key string) (*biz.LedgerEntry, error) {
	var m model.LedgerEntry
	err := r.data.DB(ctx).Where("idempotency_key = ?", key).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get ledger entry by key %s: %v", key, err)
		return nil, err
	}
	return toBizEntry(&m)
}

// SumLifetimeEarnings 统计用户终身收益总额（佣金 + 任务收益）
func (r *ledgerRepo) SumLifetimeEarnings(ctx context.Context, userID uint64) (int64, error) {
	var total int64
	err := r.data.DB(ctx).Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type IN ? AND amount > 0", userID,
			[]string{constants.EntryTypeCommission, constants.EntryTypeTaskEarning}).
		Scan(&total).Error
	if err != nil {
		r.log.Errorf("Failed to sum lifetime earnings for user %d: %v", userID, err)
		return 0, err
	}
	return total, nil
}

// ListAcquisitionsSince 查询指定时间之后的购买/升级流水（对账回放用）
func (r *ledgerRepo) ListAcquisitionsSince(ctx context.Context, since time.Time) ([]*biz.LedgerEntry, error) {
	var models []model.LedgerEntry
	if err := r.data.DB(ctx).
		Where("created_at >= ? AND type IN ?", since,
			[]string{constants.EntryTypePurchase, constants.EntryTypeUpgrade}).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		r.log.Errorf("Failed to list acquisitions since %v: %v", since, err)
		return nil, err
	}

	entries := make([]*biz.LedgerEntry, len(models))
	for i := range models {
		entry, err := toBizEntry(&models[i])
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}

func toModelEntry(b *biz.LedgerEntry) (*model.LedgerEntry, error) {
	metadata := "{}"
	if len(b.Metadata) > 0 {
		raw, err := json.Marshal(b.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = string(raw)
	}
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &model.LedgerEntry{
		UserID:         b.UserID,
		Type:           b.Type,
		Amount:         b.Amount,
		IdempotencyKey: b.IdempotencyKey,
		Metadata:       metadata,
		CreatedAt:      createdAt,
	}, nil
}

func toBizEntry(m *model.LedgerEntry) (*biz.LedgerEntry, error) {
	metadata := map[string]string{}
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, err
		}
	}
	return &biz.LedgerEntry{
		ID:             m.LedgerEntryID,
		UserID:         m.UserID,
		Type:           m.Type,
		Amount:         m.Amount,
		IdempotencyKey: m.IdempotencyKey,
		Metadata:       metadata,
		CreatedAt:      m.CreatedAt,
	}, nil
}
