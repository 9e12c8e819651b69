package service

import (
	"context"

	"github.com/umardraz9/mlmpk-sub002/internal/auth"
	"github.com/umardraz9/mlmpk-sub002/internal/biz"
	"github.com/umardraz9/mlmpk-sub002/internal/constants"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// MembershipService 会员服务
// 本服务不拥有对外协议，这里只是宿主应用调用用例层的薄适配。
type MembershipService struct {
	uc  *biz.MembershipUsecase
	cuc *biz.CommissionUsecase
}

// NewMembershipService 创建会员服务实例
func NewMembershipService(uc *biz.MembershipUsecase, cuc *biz.CommissionUsecase) *MembershipService {
	return &MembershipService{uc: uc, cuc: cuc}
}

// PlanInfo 套餐信息
type PlanInfo struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	Price               int64  `json:"price"`
	Currency            string `json:"currency"`
	DailyTaskEarning    int64  `json:"daily_task_earning"`
	TasksPerDay         int    `json:"tasks_per_day"`
	MaxEarningDays      int    `json:"max_earning_days"`
	ExtendedEarningDays int    `json:"extended_earning_days"`
	ExtensionReferrals  int    `json:"extension_referrals"`
	MinimumWithdrawal   int64  `json:"minimum_withdrawal"`
	VoucherAmount       int64  `json:"voucher_amount"`
	CommissionLevels    []*CommissionLevelInfo `json:"commission_levels"`
}

// CommissionLevelInfo 逐级佣金信息
type CommissionLevelInfo struct {
	Level       int    `json:"level"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// MembershipInfo 会员状态信息
type MembershipInfo struct {
	IsActive              bool   `json:"is_active"`
	PlanName              string `json:"plan_name,omitempty"`
	Status                string `json:"status,omitempty"`
	StartTime             int64  `json:"start_time,omitempty"`
	EndTime               int64  `json:"end_time,omitempty"`
	EarningsContinueUntil int64  `json:"earnings_continue_until,omitempty"`
	RenewalCount          int    `json:"renewal_count"`
	DailyTasksCompleted   int    `json:"daily_tasks_completed"`
	VoucherBalance        int64  `json:"voucher_balance"`
	MinWithdrawal         int64  `json:"min_withdrawal"`
}

func toPlanInfo(p *biz.Plan) *PlanInfo {
	levels := make([]*CommissionLevelInfo, len(p.CommissionLevels))
	for i, cl := range p.CommissionLevels {
		levels[i] = &CommissionLevelInfo{
			Level:       cl.Level,
			Amount:      cl.Amount,
			Description: cl.Description,
		}
	}
	return &PlanInfo{
		Name:                p.Name,
		Description:         p.Description,
		Price:               p.Price,
		Currency:            p.Currency,
		DailyTaskEarning:    p.DailyTaskEarning,
		TasksPerDay:         p.TasksPerDay,
		MaxEarningDays:      p.MaxEarningDays,
		ExtendedEarningDays: p.ExtendedEarningDays,
		ExtensionReferrals:  p.ExtensionReferrals,
		MinimumWithdrawal:   p.MinimumWithdrawal,
		VoucherAmount:       p.VoucherAmount,
		CommissionLevels:    levels,
	}
}

func toMembershipInfo(m *biz.Membership) *MembershipInfo {
	if m == nil {
		return &MembershipInfo{IsActive: false}
	}
	info := &MembershipInfo{
		IsActive:            m.Status == constants.StatusActive,
		PlanName:            m.PlanName,
		Status:              m.Status,
		StartTime:           m.StartTime.Unix(),
		EndTime:             m.EndTime.Unix(),
		RenewalCount:        m.RenewalCount,
		DailyTasksCompleted: m.DailyTasksCompleted,
		VoucherBalance:      m.VoucherBalance,
		MinWithdrawal:       m.MinWithdrawal,
	}
	if !m.EarningsContinueUntil.IsZero() {
		info.EarningsContinueUntil = m.EarningsContinueUntil.Unix()
	}
	return info
}

// ListPlansReply 在售套餐列表响应
type ListPlansReply struct {
	Plans []*PlanInfo `json:"plans"`
}

// ListPlans 获取所有在售套餐列表
func (s *MembershipService) ListPlans(ctx context.Context) (*ListPlansReply, error) {
	plans, err := s.uc.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]*PlanInfo, len(plans))
	for i, p := range plans {
		infos[i] = toPlanInfo(p)
	}
	return &ListPlansReply{Plans: infos}, nil
}

// GetPlan 获取套餐信息
func (s *MembershipService) GetPlan(ctx context.Context, name string) (*PlanInfo, error) {
	plan, err := s.uc.GetPlan(ctx, name)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, kerrors.NotFound("PLAN_NOT_FOUND", "plan not found")
	}
	return toPlanInfo(plan), nil
}

// GetMyMembership 获取用户当前会员状态
func (s *MembershipService) GetMyMembership(ctx context.Context, uid uint64) (*MembershipInfo, error) {
	// 权限验证: 只能查询自己的会员或管理员可以查询所有
	if err := auth.CheckOwnership(ctx, uid); err != nil {
		return nil, err
	}

	m, err := s.uc.GetMembership(ctx, uid)
	if err != nil {
		return nil, err
	}
	return toMembershipInfo(m), nil
}

// PurchaseRequest 购买会员请求
type PurchaseRequest struct {
	UID      uint64 `json:"uid"`
	PlanName string `json:"plan_name"`
}

// PurchaseMembership 购买会员套餐
// 首次开通或过期后重新开通，成功后异步完成推荐佣金分配。
func (s *MembershipService) PurchaseMembership(ctx context.Context, req *PurchaseRequest) (*MembershipInfo, error) {
	if err := auth.CheckOwnership(ctx, req.UID); err != nil {
		return nil, err
	}

	m, err := s.uc.Purchase(ctx, req.UID, req.PlanName)
	if err != nil {
		return nil, err
	}
	return toMembershipInfo(m), nil
}

// RenewRequest 续费请求
type RenewRequest struct {
	UID uint64 `json:"uid"`
}

// RenewMembership 续费当前套餐（按续费次数享受忠诚折扣）
func (s *MembershipService) RenewMembership(ctx context.Context, req *RenewRequest) (*MembershipInfo, error) {
	if err := auth.CheckOwnership(ctx, req.UID); err != nil {
		return nil, err
	}

	m, err := s.uc.Renew(ctx, req.UID)
	if err != nil {
		return nil, err
	}
	return toMembershipInfo(m), nil
}

// UpgradeRequest 升级请求
type UpgradeRequest struct {
	UID      uint64 `json:"uid"`
	PlanName string `json:"plan_name"`
}

// UpgradeMembership 升级到更高价的套餐
func (s *MembershipService) UpgradeMembership(ctx context.Context, req *UpgradeRequest) (*MembershipInfo, error) {
	if err := auth.CheckOwnership(ctx, req.UID); err != nil {
		return nil, err
	}

	m, err := s.uc.Upgrade(ctx, req.UID, req.PlanName)
	if err != nil {
		return nil, err
	}
	return toMembershipInfo(m), nil
}

// CancelRequest 取消会员请求
type CancelRequest struct {
	UID    uint64 `json:"uid"`
	Reason string `json:"reason"`
}

// CancelMembership 取消会员（管理操作）
func (s *MembershipService) CancelMembership(ctx context.Context, req *CancelRequest) error {
	if !auth.IsAdmin(ctx) {
		return kerrors.Forbidden("FORBIDDEN", "permission denied: admin only")
	}
	return s.uc.Cancel(ctx, req.UID, req.Reason)
}

// CanEarnTodayReply 今日收益资格响应
type CanEarnTodayReply struct {
	CanEarn bool `json:"can_earn"`
}

// CanEarnToday 查询用户今天是否还能做任务赚取收益
func (s *MembershipService) CanEarnToday(ctx context.Context, uid uint64) (*CanEarnTodayReply, error) {
	if err := auth.CheckOwnership(ctx, uid); err != nil {
		return nil, err
	}

	can, err := s.uc.CanEarnToday(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &CanEarnTodayReply{CanEarn: can}, nil
}

// CompleteTaskRequest 完成任务请求
type CompleteTaskRequest struct {
	UID uint64 `json:"uid"`
}

// CompleteTaskReply 完成任务响应
type CompleteTaskReply struct {
	Membership *MembershipInfo `json:"membership"`
	Credited   int64           `json:"credited"` // 实际入账金额，终身上限截断后可能为 0
}

// CompleteDailyTask 完成一次每日任务并入账任务收益
func (s *MembershipService) CompleteDailyTask(ctx context.Context, req *CompleteTaskRequest) (*CompleteTaskReply, error) {
	if err := auth.CheckOwnership(ctx, req.UID); err != nil {
		return nil, err
	}

	m, credited, err := s.uc.CompleteDailyTask(ctx, req.UID)
	if err != nil {
		return nil, err
	}
	return &CompleteTaskReply{
		Membership: toMembershipInfo(m),
		Credited:   credited,
	}, nil
}

// ExtendRequest 延长收益窗口请求
type ExtendRequest struct {
	UID uint64 `json:"uid"`
}

// ExtendReply 延长收益窗口响应
type ExtendReply struct {
	Extended   bool            `json:"extended"`
	Membership *MembershipInfo `json:"membership"`
}

// ExtendEarningWindow 按直推人数申请延长收益窗口
func (s *MembershipService) ExtendEarningWindow(ctx context.Context, req *ExtendRequest) (*ExtendReply, error) {
	if err := auth.CheckOwnership(ctx, req.UID); err != nil {
		return nil, err
	}

	extended, err := s.uc.ExtendEarningWindow(ctx, req.UID)
	if err != nil {
		return nil, err
	}
	m, err := s.uc.GetMembership(ctx, req.UID)
	if err != nil {
		return nil, err
	}
	return &ExtendReply{Extended: extended, Membership: toMembershipInfo(m)}, nil
}

// HistoryItem 会员历史记录项
type HistoryItem struct {
	PlanName  string `json:"plan_name"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Status    string `json:"status"`
	Action    string `json:"action"`
	CreatedAt int64  `json:"created_at"`
}

// HistoryReply 会员历史响应
type HistoryReply struct {
	Items []*HistoryItem `json:"items"`
	Total int            `json:"total"`
}

// GetMembershipHistory 获取会员历史记录（分页）
func (s *MembershipService) GetMembershipHistory(ctx context.Context, uid uint64, page, pageSize int) (*HistoryReply, error) {
	if err := auth.CheckOwnership(ctx, uid); err != nil {
		return nil, err
	}

	items, total, err := s.uc.GetMembershipHistory(ctx, uid, page, pageSize)
	if err != nil {
		return nil, err
	}

	infos := make([]*HistoryItem, len(items))
	for i, h := range items {
		infos[i] = &HistoryItem{
			PlanName:  h.PlanName,
			StartTime: h.StartTime.Unix(),
			EndTime:   h.EndTime.Unix(),
			Status:    h.Status,
			Action:    h.Action,
			CreatedAt: h.CreatedAt.Unix(),
		}
	}
	return &HistoryReply{Items: infos, Total: total}, nil
}

// RedistributeRequest 佣金重放请求
type RedistributeRequest struct {
	TxnID string `json:"txn_id"`
}

// RedistributeCommission 按获客交易ID重放佣金分配（管理操作，幂等）
func (s *MembershipService) RedistributeCommission(ctx context.Context, req *RedistributeRequest) error {
	if !auth.IsAdmin(ctx) {
		return kerrors.Forbidden("FORBIDDEN", "permission denied: admin only")
	}
	return s.cuc.Redistribute(ctx, req.TxnID)
}
