package biz

import (
	"context"
	"time"

	"github.com/umardraz9/mlmpk-sub002/internal/constants"
)

// MembershipHistory 会员生命周期历史记录
type MembershipHistory struct {
	ID        uint64
	UserID    uint64
	PlanName  string
	StartTime time.Time
	EndTime   time.Time
	Status    string
	Action    string // created, renewed, upgraded, expired, cancelled, extended
	CreatedAt time.Time
}

// MembershipHistoryRepo 会员历史记录仓库接口
type MembershipHistoryRepo interface {
	AddMembershipHistory(ctx context.Context, history *MembershipHistory) error
	GetMembershipHistory(ctx context.Context, userID uint64, page, pageSize int) ([]*MembershipHistory, int, error)
}

// GetMembershipHistory 获取会员历史记录
func (uc *MembershipUsecase) GetMembershipHistory(ctx context.Context, userID uint64, page, pageSize int) ([]*MembershipHistory, int, error) {
	uc.log.Infof("GetMembershipHistory: userID=%d, page=%d, pageSize=%d", userID, page, pageSize)

	// 参数验证
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}

	items, total, err := uc.historyRepo.GetMembershipHistory(ctx, userID, page, pageSize)
	if err != nil {
		uc.log.Errorf("Failed to get membership history: %v", err)
		return nil, 0, err
	}

	uc.log.Infof("Retrieved %d history items for user %d", len(items), userID)
	return items, total, nil
}
