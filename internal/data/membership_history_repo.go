package data

import (
	"context"

	"github.com/umardraz9/mlmpk-sub002/internal/biz"
	"github.com/umardraz9/mlmpk-sub002/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
)

// historyRepo 会员历史记录仓库实现
type historyRepo struct {
	data *Data
	log  *log.Helper
}

// NewMembershipHistoryRepo 创建会员历史记录仓库
func NewMembershipHistoryRepo(data *Data, logger log.Logger) biz.MembershipHistoryRepo {
	return &historyRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// AddMembershipHistory 添加会员历史记录
func (r *historyRepo) AddMembershipHistory(ctx context.Context, history *biz.MembershipHistory) error {
	m := &model.MembershipHistory{
		UserID:    history.UserID,
		PlanName:  history.PlanName,
		StartTime: history.StartTime,
		EndTime:   history.EndTime,
		Status:    history.Status,
		Action:    history.Action,
		CreatedAt: history.CreatedAt,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to add membership history for user %d: %v", history.UserID, err)
		return err
	}
	return nil
}

// GetMembershipHistory 获取用户会员历史
func (r *historyRepo) GetMembershipHistory(ctx context.Context, userID uint64, page, pageSize int) ([]*biz.MembershipHistory, int, error) {
	var models []model.MembershipHistory
	var total int64

	// 获取总数
	if err := r.data.DB(ctx).Model(&model.MembershipHistory{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		r.log.Errorf("Failed to count membership history for user %d: %v", userID, err)
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := r.data.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error; err != nil {
		r.log.Errorf("Failed to get membership history for user %d: %v", userID, err)
		return nil, 0, err
	}

	items := make([]*biz.MembershipHistory, len(models))
	for i, m := range models {
		items[i] = &biz.MembershipHistory{
			ID:        m.MembershipHistoryID,
			UserID:    m.UserID,
			PlanName:  m.PlanName,
			StartTime: m.StartTime,
			EndTime:   m.EndTime,
			Status:    m.Status,
			Action:    m.Action,
			CreatedAt: m.CreatedAt,
		}
	}

	return items, int(total), nil
}
