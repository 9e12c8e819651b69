package data

import (
	"context"
	"errors"
	"time"

	"github.com/umardraz9/mlmpk-sub002/internal/biz"
	"github.com/umardraz9/mlmpk-sub002/internal/constants"
	"github.com/umardraz9/mlmpk-sub002/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// membershipRepo 会员记录仓库实现
type membershipRepo struct {
	data *Data
	log  *log.Helper
}

// NewMembershipRepo 创建会员记录仓库
func NewMembershipRepo(data *Data, logger log.Logger) biz.MembershipRepo {
	return &membershipRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetMembership 获取用户会员记录
func (r *membershipRepo) GetMembership(ctx context.Context, userID uint64) (*biz.Membership, error) {
	var m model.UserMembership
	err := r.data.DB(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get membership for user %d: %v", userID, err)
		return nil, err
	}
	return toBizMembership(&m), nil
}

// CreateMembership 创建会员记录
func (r *membershipRepo) CreateMembership(ctx context.Context, m *biz.Membership) error {
	mm := toModelMembership(m)
	mm.Version = 1
	if err := r.data.DB(ctx).Create(mm).Error; err != nil {
		r.log.Errorf("Failed to create membership for user %d: %v", m.UserID, err)
		return err
	}
	m.ID = mm.ID
	m.Version = mm.Version
	return nil
}

// CompareAndSwapMembership 按版本号更新会员记录
// 版本不匹配（并发写入先行提交）时返回 (false, nil)，由上层重读重试。
func (r *membershipRepo) CompareAndSwapMembership(ctx context.Context, m *biz.Membership, expectedVersion uint64) (bool, error) {
	mm := toModelMembership(m)
	result := r.data.DB(ctx).Model(&model.UserMembership{}).
		Where("user_id = ? AND version = ?", m.UserID, expectedVersion).
		Updates(map[string]interface{}{
			"plan_name":               mm.PlanName,
			"status":                  mm.Status,
			"start_time":              mm.StartTime,
			"end_time":                mm.EndTime,
			"earnings_continue_until": mm.EarningsContinueUntil,
			"renewal_count":           mm.RenewalCount,
			"last_renewal_at":         mm.LastRenewalAt,
			"daily_tasks_completed":   mm.DailyTasksCompleted,
			"last_task_at":            mm.LastTaskAt,
			"voucher_balance":         mm.VoucherBalance,
			"min_withdrawal":          mm.MinWithdrawal,
			"version":                 expectedVersion + 1,
			"updated_at":              mm.UpdatedAt,
		})
	if result.Error != nil {
		r.log.Errorf("Failed to update membership for user %d: %v", m.UserID, result.Error)
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	m.Version = expectedVersion + 1
	return true, nil
}

// GetExpiringMemberships 获取即将过期的活跃会员
func (r *membershipRepo) GetExpiringMemberships(ctx context.Context, daysBeforeExpiry, page, pageSize int) ([]*biz.Membership, int, error) {
	var models []model.UserMembership
	var total int64

	now := time.Now().UTC()
	expiryDate := now.AddDate(0, 0, daysBeforeExpiry)

	// 获取总数
	if err := r.data.DB(ctx).Model(&model.UserMembership{}).
		Where("end_time BETWEEN ? AND ? AND status = ?", now, expiryDate, constants.StatusActive).
		Count(&total).Error; err != nil {
		r.log.Errorf("Failed to count expiring memberships: %v", err)
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := r.data.DB(ctx).
		Where("end_time BETWEEN ? AND ? AND status = ?", now, expiryDate, constants.StatusActive).
		Order("end_time ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error; err != nil {
		r.log.Errorf("Failed to get expiring memberships: %v", err)
		return nil, 0, err
	}

	memberships := make([]*biz.Membership, len(models))
	for i := range models {
		memberships[i] = toBizMembership(&models[i])
	}
	return memberships, int(total), nil
}

// UpdateExpiredMemberships 批量把到期的活跃会员置为过期
func (r *membershipRepo) UpdateExpiredMemberships(ctx context.Context) (int, []uint64, error) {
	now := time.Now().UTC()

	// 先查询需要更新的会员
	var models []model.UserMembership
	if err := r.data.DB(ctx).
		Where("end_time < ? AND status = ?", now, constants.StatusActive).
		Find(&models).Error; err != nil {
		r.log.Errorf("Failed to query expired memberships: %v", err)
		return 0, nil, err
	}

	if len(models) == 0 {
		return 0, []uint64{}, nil
	}

	uids := make([]uint64, len(models))
	for i, m := range models {
		uids[i] = m.UserID
	}

	// 批量更新状态（版本号同步自增，保持与 CAS 写路径一致）
	result := r.data.DB(ctx).Model(&model.UserMembership{}).
		Where("end_time < ? AND status = ?", now, constants.StatusActive).
		Updates(map[string]interface{}{
			"status":     constants.StatusExpired,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		r.log.Errorf("Failed to update expired memberships: %v", result.Error)
		return 0, nil, result.Error
	}

	r.log.Infof("Updated %d expired memberships", result.RowsAffected)
	return int(result.RowsAffected), uids, nil
}

func toBizMembership(m *model.UserMembership) *biz.Membership {
	b := &biz.Membership{
		ID:                  m.ID,
		UserID:              m.UserID,
		PlanName:            m.PlanName,
		Status:              m.Status,
		StartTime:           m.StartTime,
		EndTime:             m.EndTime,
		RenewalCount:        m.RenewalCount,
		DailyTasksCompleted: m.DailyTasksCompleted,
		VoucherBalance:      m.VoucherBalance,
		MinWithdrawal:       m.MinWithdrawal,
		Version:             m.Version,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.EarningsContinueUntil != nil {
		b.EarningsContinueUntil = *m.EarningsContinueUntil
	}
	if m.LastRenewalAt != nil {
		b.LastRenewalAt = *m.LastRenewalAt
	}
	if m.LastTaskAt != nil {
		b.LastTaskAt = *m.LastTaskAt
	}
	return b
}

func toModelMembership(b *biz.Membership) *model.UserMembership {
	m := &model.UserMembership{
		ID:                  b.ID,
		UserID:              b.UserID,
		PlanName:            b.PlanName,
		Status:              b.Status,
		StartTime:           b.StartTime,
		EndTime:             b.EndTime,
		RenewalCount:        b.RenewalCount,
		DailyTasksCompleted: b.DailyTasksCompleted,
		VoucherBalance:      b.VoucherBalance,
		MinWithdrawal:       b.MinWithdrawal,
		Version:             b.Version,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
	if !b.EarningsContinueUntil.IsZero() {
		t := b.EarningsContinueUntil
		m.EarningsContinueUntil = &t
	}
	if !b.LastRenewalAt.IsZero() {
		t := b.LastRenewalAt
		m.LastRenewalAt = &t
	}
	if !b.LastTaskAt.IsZero() {
		t := b.LastTaskAt
		m.LastTaskAt = &t
	}
	return m
}
