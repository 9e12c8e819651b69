package data

import (
	"context"
	"errors"

	"github.com/umardraz9/mlmpk-sub002/internal/biz"
	"github.com/umardraz9/mlmpk-sub002/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// planRepo Plan 仓库实现（核心只读，套餐由管理后台维护）
type planRepo struct {
	data *Data
	log  *log.Helper
}

// NewPlanRepo 创建 Plan 仓库
func NewPlanRepo(data *Data, logger log.Logger) biz.PlanRepo {
	return &planRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetPlan 按名称获取套餐（含逐级佣金表），不存在时返回 (nil, nil)
func (r *planRepo) GetPlan(ctx context.Context, name string) (*biz.Plan, error) {
	var m model.Plan
	err := r.data.DB(ctx).First(&m, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get plan %s: %v", name, err)
		return nil, err
	}

	levels, err := r.commissionLevels(ctx, m.Name)
	if err != nil {
		return nil, err
	}
	return toBizPlan(&m, levels), nil
}

// ListActivePlans 获取所有在售套餐列表
func (r *planRepo) ListActivePlans(ctx context.Context) ([]*biz.Plan, error) {
	var models []model.Plan
	if err := r.data.DB(ctx).Where("is_active = ?", true).Order("price ASC").Find(&models).Error; err != nil {
		r.log.Errorf("Failed to list active plans: %v", err)
		return nil, err
	}

	plans := make([]*biz.Plan, len(models))
	for i, m := range models {
		levels, err := r.commissionLevels(ctx, m.Name)
		if err != nil {
			return nil, err
		}
		plans[i] = toBizPlan(&m, levels)
	}
	return plans, nil
}

// commissionLevels 查询套餐的逐级佣金配置，按层级升序
func (r *planRepo) commissionLevels(ctx context.Context, planName string) ([]*biz.CommissionLevel, error) {
	var models []model.CommissionLevel
	if err := r.data.DB(ctx).
		Where("plan_name = ?", planName).
		Order("level ASC").
		Find(&models).Error; err != nil {
		r.log.Errorf("Failed to get commission levels for plan %s: %v", planName, err)
		return nil, err
	}

	levels := make([]*biz.CommissionLevel, len(models))
	for i, m := range models {
		levels[i] = &biz.CommissionLevel{
			Level:       m.Level,
			Amount:      m.Amount,
			Description: m.Description,
		}
	}
	return levels, nil
}

func toBizPlan(m *model.Plan, levels []*biz.CommissionLevel) *biz.Plan {
	return &biz.Plan{
		Name:                m.Name,
		Description:         m.Description,
		Price:               m.Price,
		Currency:            m.Currency,
		DailyTaskEarning:    m.DailyTaskEarning,
		TasksPerDay:         m.TasksPerDay,
		MaxEarningDays:      m.MaxEarningDays,
		ExtendedEarningDays: m.ExtendedEarningDays,
		ExtensionReferrals:  m.ExtensionReferrals,
		MinimumWithdrawal:   m.MinimumWithdrawal,
		VoucherAmount:       m.VoucherAmount,
		IsActive:            m.IsActive,
		CommissionLevels:    levels,
	}
}
