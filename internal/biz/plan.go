package biz

import "context"

// Plan 会员套餐
type Plan struct {
	Name                string // 唯一标识，如 BASIC / STANDARD / PREMIUM
	Description         string
	Price               int64
	Currency            string
	DailyTaskEarning    int64 // 单个任务收益
	TasksPerDay         int   // 每日任务数上限
	MaxEarningDays      int   // 基础收益窗口（天）
	ExtendedEarningDays int   // 延长收益窗口（天，从开始日期起算）
	ExtensionReferrals  int   // 解锁延长窗口所需直推人数
	MinimumWithdrawal   int64
	VoucherAmount       int64
	IsActive            bool
	CommissionLevels    []*CommissionLevel // 按层级升序，层级从1开始连续
}

// CommissionLevel 套餐的逐级佣金配置（固定金额）
type CommissionLevel struct {
	Level       int // 1..5
	Amount      int64
	Description string
}

// CommissionAt 返回指定层级的佣金配置，未配置时返回 nil
func (p *Plan) CommissionAt(level int) *CommissionLevel {
	for _, cl := range p.CommissionLevels {
		if cl.Level == level {
			return cl
		}
	}
	return nil
}

// PlanRepo 套餐仓库接口（核心只读，套餐的增删改由管理后台负责）
type PlanRepo interface {
	GetPlan(ctx context.Context, name string) (*Plan, error)
	ListActivePlans(ctx context.Context) ([]*Plan, error)
}

// ListActivePlans 获取所有可购买的套餐列表
func (uc *MembershipUsecase) ListActivePlans(ctx context.Context) ([]*Plan, error) {
	return uc.planRepo.ListActivePlans(ctx)
}

// GetPlan 获取套餐信息
func (uc *MembershipUsecase) GetPlan(ctx context.Context, name string) (*Plan, error) {
	return uc.planRepo.GetPlan(ctx, name)
}
