package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/umardraz9/mlmpk-sub002/internal/conf"
	"github.com/umardraz9/mlmpk-sub002/internal/constants"
	"github.com/umardraz9/mlmpk-sub002/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
)

// Membership 用户会员记录（每个用户至多一条，记录不存在即表示从未开通）
type Membership struct {
	ID       uint64
	UserID   uint64
	PlanName string
	Status   string // active, expired, cancelled
	// StartTime/EndTime 为当前会员周期的起止时间
	StartTime time.Time
	EndTime   time.Time
	// EarningsContinueUntil 收益窗口截止时间，零值表示未设置。
	// 通过推荐解锁延长窗口后可晚于 EndTime（正式到期后的宽限收益期）。
	EarningsContinueUntil time.Time
	// RenewalCount 同套餐续费次数，驱动忠诚折扣；升级时归零
	RenewalCount  int
	LastRenewalAt time.Time
	// DailyTasksCompleted 当天已完成任务数，跨日访问时惰性清零
	DailyTasksCompleted int
	LastTaskAt          time.Time
	VoucherBalance      int64
	MinWithdrawal       int64
	// Version 乐观锁版本号，每次写入自增
	Version   uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive 判断会员是否处于激活状态
func (m *Membership) IsActive() bool {
	return m != nil && m.Status == constants.StatusActive
}

// MembershipRepo 会员记录仓库接口
type MembershipRepo interface {
	// GetMembership 获取用户会员记录，不存在时返回 (nil, nil)
	GetMembership(ctx context.Context, userID uint64) (*Membership, error)
	CreateMembership(ctx context.Context, m *Membership) error
	// CompareAndSwapMembership 按版本号更新会员记录，版本不匹配时返回 (false, nil)
	CompareAndSwapMembership(ctx context.Context, m *Membership, expectedVersion uint64) (bool, error)
	// 批量操作（用于定时任务）
	GetExpiringMemberships(ctx context.Context, daysBeforeExpiry, page, pageSize int) ([]*Membership, int, error)
	UpdateExpiredMemberships(ctx context.Context) (int, []uint64, error)
}

// errVersionConflict CAS 写入失败的内部信号，重试耗尽后才转成业务错误
var errVersionConflict = stderrors.New("membership version conflict")

// MembershipUsecase 会员生命周期业务逻辑
type MembershipUsecase struct {
	planRepo    PlanRepo
	memRepo     MembershipRepo
	ledgerRepo  LedgerRepo
	historyRepo MembershipHistoryRepo
	sponsorRepo SponsorRepo
	commission  *CommissionUsecase
	notifier    NotificationClient
	rs          *redsync.Redsync
	tm          Transaction
	config      *conf.Bootstrap
	log         *log.Helper
	now         func() time.Time
}

// NewMembershipUsecase 创建会员业务用例
func NewMembershipUsecase(
	planRepo PlanRepo,
	memRepo MembershipRepo,
	ledgerRepo LedgerRepo,
	historyRepo MembershipHistoryRepo,
	sponsorRepo SponsorRepo,
	commission *CommissionUsecase,
	notifier NotificationClient,
	rs *redsync.Redsync,
	tm Transaction,
	config *conf.Bootstrap,
	logger log.Logger,
) *MembershipUsecase {
	return &MembershipUsecase{
		planRepo:    planRepo,
		memRepo:     memRepo,
		ledgerRepo:  ledgerRepo,
		historyRepo: historyRepo,
		sponsorRepo: sponsorRepo,
		commission:  commission,
		notifier:    notifier,
		rs:          rs,
		tm:          tm,
		config:      config,
		log:         log.NewHelper(logger),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetMembership 获取用户当前会员记录（不存在时返回 nil）
func (uc *MembershipUsecase) GetMembership(ctx context.Context, userID uint64) (*Membership, error) {
	return uc.memRepo.GetMembership(ctx, userID)
}

// Purchase 购买会员（首次开通或过期后重新开通）
// 状态机: NONE/EXPIRED -> ACTIVE。已激活用户不允许重复购买。
func (uc *MembershipUsecase) Purchase(ctx context.Context, userID uint64, planName string) (*Membership, error) {
	uc.log.Infof("Purchase: userID=%d, plan=%s", userID, planName)

	unlock, err := uc.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 套餐必须存在且在售（下架只阻止新购，见 Renew）
	plan, err := uc.planRepo.GetPlan(ctx, planName)
	if err != nil {
		uc.log.Errorf("Failed to get plan %s: %v", planName, err)
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
	}
	if plan == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
	}
	if !plan.IsActive {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanInactive)
	}

	txnID := uuid.New().String()
	var result *Membership

	err = uc.withVersionRetry(ctx, func() error {
		cur, err := uc.memRepo.GetMembership(ctx, userID)
		if err != nil {
			return err
		}
		if cur.IsActive() {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeAlreadyActive)
		}

		now := uc.now()
		next := &Membership{
			UserID:                userID,
			PlanName:              plan.Name,
			Status:                constants.StatusActive,
			StartTime:             now,
			EndTime:               now.AddDate(0, 0, plan.MaxEarningDays),
			RenewalCount:          0,
			DailyTasksCompleted:   0,
			VoucherBalance:        plan.VoucherAmount, // 购买时代金券是替换而不是累加
			MinWithdrawal:         plan.MinimumWithdrawal,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		next.EarningsContinueUntil = next.EndTime
		if cur != nil {
			next.ID = cur.ID
			next.CreatedAt = cur.CreatedAt
		}

		err = uc.tm.Exec(ctx, func(ctx context.Context) error {
			if err := uc.saveMembership(ctx, cur, next); err != nil {
				return err
			}
			if err := uc.appendDebit(ctx, userID, constants.EntryTypePurchase, plan.Price, txnID, plan.Name); err != nil {
				return err
			}
			return uc.addHistory(ctx, next, constants.ActionCreated)
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Membership activated for user %d: plan=%s, txn=%s, end=%v", userID, plan.Name, txnID, result.EndTime)

	// 佣金分配在会员变更提交之后执行，失败不回滚会员状态，可通过对账回放补齐
	if err := uc.commission.Distribute(ctx, userID, plan, txnID); err != nil {
		uc.log.Errorf("Commission distribution incomplete for txn %s: %v", txnID, err)
	}

	uc.notifyQuietly(ctx, userID, constants.NotifyKindMembershipActivated, map[string]string{
		"plan":   plan.Name,
		"txn_id": txnID,
	})
	return result, nil
}

// Renew 续费当前套餐
// 状态机: ACTIVE/EXPIRED -> ACTIVE。价格按续费次数打忠诚折扣。
// 续费不触发佣金分配：推荐佣金是一次性的获客激励。
func (uc *MembershipUsecase) Renew(ctx context.Context, userID uint64) (*Membership, error) {
	uc.log.Infof("Renew: userID=%d", userID)

	unlock, err := uc.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	txnID := uuid.New().String()
	var result *Membership

	err = uc.withVersionRetry(ctx, func() error {
		cur, err := uc.memRepo.GetMembership(ctx, userID)
		if err != nil {
			return err
		}
		if cur == nil {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeNoMembershipToRenew)
		}
		if cur.Status != constants.StatusActive && cur.Status != constants.StatusExpired {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeMembershipNotActive)
		}

		// 套餐下架不影响存量用户续费
		plan, err := uc.planRepo.GetPlan(ctx, cur.PlanName)
		if err != nil || plan == nil {
			uc.log.Errorf("Failed to get plan %s for renewal: %v", cur.PlanName, err)
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
		}

		price := RenewalPrice(plan.Price, cur.RenewalCount)
		now := uc.now()

		next := *cur
		next.Status = constants.StatusActive
		next.StartTime = now
		next.EndTime = now.AddDate(0, 0, plan.MaxEarningDays) // 从当前时间起算，不接续旧的到期时间
		next.EarningsContinueUntil = next.EndTime
		next.RenewalCount = cur.RenewalCount + 1
		next.LastRenewalAt = now
		next.DailyTasksCompleted = 0
		next.LastTaskAt = time.Time{}
		next.VoucherBalance = cur.VoucherBalance + plan.VoucherAmount // 续费时代金券累加
		next.MinWithdrawal = plan.MinimumWithdrawal
		next.UpdatedAt = now

		err = uc.tm.Exec(ctx, func(ctx context.Context) error {
			if err := uc.saveMembership(ctx, cur, &next); err != nil {
				return err
			}
			if err := uc.appendDebit(ctx, userID, constants.EntryTypeRenewal, price, txnID, plan.Name); err != nil {
				return err
			}
			return uc.addHistory(ctx, &next, constants.ActionRenewed)
		})
		if err != nil {
			return err
		}
		result = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Membership renewed for user %d: renewalCount=%d, txn=%s", userID, result.RenewalCount, txnID)

	uc.notifyQuietly(ctx, userID, constants.NotifyKindMembershipRenewed, map[string]string{
		"plan":   result.PlanName,
		"txn_id": txnID,
	})
	return result, nil
}

// Upgrade 升级到更高价的套餐
// 状态机: ACTIVE -> ACTIVE。升级收目标套餐全价（忠诚折扣不可跨套餐携带），
// 续费次数归零，并按新套餐的佣金表重新触发一次佣金分配。
func (uc *MembershipUsecase) Upgrade(ctx context.Context, userID uint64, targetPlanName string) (*Membership, error) {
	uc.log.Infof("Upgrade: userID=%d, targetPlan=%s", userID, targetPlanName)

	unlock, err := uc.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 升级属于新的获客行为，目标套餐必须在售
	target, err := uc.planRepo.GetPlan(ctx, targetPlanName)
	if err != nil {
		uc.log.Errorf("Failed to get target plan %s: %v", targetPlanName, err)
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
	}
	if target == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
	}
	if !target.IsActive {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanInactive)
	}

	txnID := uuid.New().String()
	var result *Membership

	err = uc.withVersionRetry(ctx, func() error {
		cur, err := uc.memRepo.GetMembership(ctx, userID)
		if err != nil {
			return err
		}
		if !cur.IsActive() {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeMembershipNotActive)
		}

		current, err := uc.planRepo.GetPlan(ctx, cur.PlanName)
		if err != nil || current == nil {
			uc.log.Errorf("Failed to get current plan %s: %v", cur.PlanName, err)
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
		}
		if !IsUpgrade(current.Price, target.Price) {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeNotAnUpgrade)
		}

		// 升级永远收全价
		price := RenewalPrice(target.Price, 0)
		now := uc.now()

		next := *cur
		next.PlanName = target.Name
		next.Status = constants.StatusActive
		next.StartTime = now
		next.EndTime = now.AddDate(0, 0, target.MaxEarningDays)
		next.EarningsContinueUntil = next.EndTime
		next.RenewalCount = 0 // 忠诚折扣绑定套餐，升级后重新累计
		next.LastRenewalAt = now
		next.DailyTasksCompleted = 0
		next.LastTaskAt = time.Time{}
		next.VoucherBalance = cur.VoucherBalance + target.VoucherAmount
		next.MinWithdrawal = target.MinimumWithdrawal
		next.UpdatedAt = now

		err = uc.tm.Exec(ctx, func(ctx context.Context) error {
			if err := uc.saveMembership(ctx, cur, &next); err != nil {
				return err
			}
			if err := uc.appendDebit(ctx, userID, constants.EntryTypeUpgrade, price, txnID, target.Name); err != nil {
				return err
			}
			return uc.addHistory(ctx, &next, constants.ActionUpgraded)
		})
		if err != nil {
			return err
		}
		result = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Membership upgraded for user %d: plan=%s, txn=%s", userID, target.Name, txnID)

	// 升级视为新的获客事件，按新套餐佣金表分配
	if err := uc.commission.Distribute(ctx, userID, target, txnID); err != nil {
		uc.log.Errorf("Commission distribution incomplete for txn %s: %v", txnID, err)
	}

	uc.notifyQuietly(ctx, userID, constants.NotifyKindMembershipUpgraded, map[string]string{
		"plan":   target.Name,
		"txn_id": txnID,
	})
	return result, nil
}

// Cancel 取消会员（管理操作）
func (uc *MembershipUsecase) Cancel(ctx context.Context, userID uint64, reason string) error {
	uc.log.Infof("Cancel: userID=%d, reason=%s", userID, reason)

	unlock, err := uc.lockUser(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	return uc.withVersionRetry(ctx, func() error {
		cur, err := uc.memRepo.GetMembership(ctx, userID)
		if err != nil {
			return err
		}
		if cur == nil || cur.Status == constants.StatusCancelled {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeCannotCancelStatus)
		}

		next := *cur
		next.Status = constants.StatusCancelled
		next.UpdatedAt = uc.now()

		return uc.tm.Exec(ctx, func(ctx context.Context) error {
			if err := uc.saveMembership(ctx, cur, &next); err != nil {
				return err
			}
			return uc.addHistory(ctx, &next, constants.ActionCancelled)
		})
	})
}

// CanEarnToday 判断用户今天是否还能做任务赚取收益
func (uc *MembershipUsecase) CanEarnToday(ctx context.Context, userID uint64) (bool, error) {
	m, err := uc.memRepo.GetMembership(ctx, userID)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, nil
	}
	plan, err := uc.planRepo.GetPlan(ctx, m.PlanName)
	if err != nil || plan == nil {
		return false, err
	}
	return uc.canEarn(m, plan, uc.now()), nil
}

// canEarn 收益资格判断
// 激活状态下收益窗口未过即可；过期状态下若延长窗口尚未结束仍可继续（宽限机制）。
func (uc *MembershipUsecase) canEarn(m *Membership, plan *Plan, now time.Time) bool {
	switch m.Status {
	case constants.StatusActive:
		if !m.EarningsContinueUntil.IsZero() && now.After(m.EarningsContinueUntil) {
			return false
		}
	case constants.StatusExpired:
		if m.EarningsContinueUntil.IsZero() || now.After(m.EarningsContinueUntil) {
			return false
		}
	default:
		return false
	}
	return tasksCompletedToday(m, now) < plan.TasksPerDay
}

// CompleteDailyTask 完成一次每日任务并入账任务收益
// 收益与推荐佣金共享终身上限，超出部分截断入账。
// 返回更新后的会员记录和实际入账金额（可能因上限截断为 0）。
func (uc *MembershipUsecase) CompleteDailyTask(ctx context.Context, userID uint64) (*Membership, int64, error) {
	uc.log.Infof("CompleteDailyTask: userID=%d", userID)

	unlock, err := uc.lockUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	var result *Membership
	var credited int64

	err = uc.withVersionRetry(ctx, func() error {
		cur, err := uc.memRepo.GetMembership(ctx, userID)
		if err != nil {
			return err
		}
		if cur == nil {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeEarningNotAllowed)
		}
		plan, err := uc.planRepo.GetPlan(ctx, cur.PlanName)
		if err != nil || plan == nil {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
		}

		now := uc.now()
		if !uc.canEarn(cur, plan, now) {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeEarningNotAllowed)
		}

		done := tasksCompletedToday(cur, now)
		next := *cur
		next.DailyTasksCompleted = done + 1
		next.LastTaskAt = now
		next.UpdatedAt = now

		// 上限检查与入账必须串行（与同一用户的佣金入账共用一把锁）
		capUnlock, err := uc.commission.lockCap(ctx, userID)
		if err != nil {
			return err
		}
		defer capUnlock()

		amount, err := uc.commission.remainingCapacity(ctx, userID, plan.DailyTaskEarning)
		if err != nil {
			return err
		}

		err = uc.tm.Exec(ctx, func(ctx context.Context) error {
			if err := uc.saveMembership(ctx, cur, &next); err != nil {
				return err
			}
			if amount <= 0 {
				// 上限已满，任务计数照常累加但不再产生收益
				uc.log.Infof("Task earning skipped for user %d: lifetime cap reached", userID)
				return nil
			}
			key := fmt.Sprintf("TASK:%d:%s:%d", userID, now.Format("20060102"), next.DailyTasksCompleted)
			entry := &LedgerEntry{
				UserID:         userID,
				Type:           constants.EntryTypeTaskEarning,
				Amount:         amount,
				IdempotencyKey: key,
				Metadata: map[string]string{
					"plan": plan.Name,
					"task": strconv.Itoa(next.DailyTasksCompleted),
				},
				CreatedAt: now,
			}
			if _, err := uc.ledgerRepo.AppendEntry(ctx, entry); err != nil {
				uc.log.Errorf("Failed to append task earning for user %d: %v", userID, err)
				return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeLedgerWriteFailed)
			}
			return nil
		})
		if err != nil {
			return err
		}
		result = &next
		credited = amount
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	uc.log.Infof("Task completed for user %d: count=%d, credited=%d", userID, result.DailyTasksCompleted, credited)
	return result, credited, nil
}

// ExtendEarningWindow 按直推人数解锁延长收益窗口
// 满足条件时把收益截止时间推到 开始时间 + 延长窗口天数，返回是否发生了延长。
func (uc *MembershipUsecase) ExtendEarningWindow(ctx context.Context, userID uint64) (bool, error) {
	uc.log.Infof("ExtendEarningWindow: userID=%d", userID)

	unlock, err := uc.lockUser(ctx, userID)
	if err != nil {
		return false, err
	}
	defer unlock()

	extended := false
	err = uc.withVersionRetry(ctx, func() error {
		cur, err := uc.memRepo.GetMembership(ctx, userID)
		if err != nil {
			return err
		}
		if !cur.IsActive() {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeMembershipNotActive)
		}
		plan, err := uc.planRepo.GetPlan(ctx, cur.PlanName)
		if err != nil || plan == nil {
			return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
		}
		if plan.ExtendedEarningDays <= plan.MaxEarningDays {
			return nil
		}

		referrals, err := uc.sponsorRepo.CountReferrals(ctx, userID)
		if err != nil {
			uc.log.Errorf("Failed to count referrals for user %d: %v", userID, err)
			return err
		}
		if !ExtensionEligible(plan.ExtensionReferrals, referrals) {
			uc.log.Infof("User %d not eligible for extension: referrals=%d, required=%d", userID, referrals, plan.ExtensionReferrals)
			return nil
		}

		until := cur.StartTime.AddDate(0, 0, plan.ExtendedEarningDays)
		if !until.After(cur.EarningsContinueUntil) {
			return nil // 已经延长过
		}

		next := *cur
		next.EarningsContinueUntil = until
		next.UpdatedAt = uc.now()

		err = uc.tm.Exec(ctx, func(ctx context.Context) error {
			if err := uc.saveMembership(ctx, cur, &next); err != nil {
				return err
			}
			return uc.addHistory(ctx, &next, constants.ActionExtended)
		})
		if err != nil {
			return err
		}
		extended = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if extended {
		uc.log.Infof("Earning window extended for user %d", userID)
	}
	return extended, nil
}

// tasksCompletedToday 惰性跨日清零：上次任务日期与今天不同则视为 0
func tasksCompletedToday(m *Membership, now time.Time) int {
	if m.LastTaskAt.IsZero() || !sameCalendarDay(m.LastTaskAt, now) {
		return 0
	}
	return m.DailyTasksCompleted
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// saveMembership 新记录直接创建，已有记录走版本号 CAS
func (uc *MembershipUsecase) saveMembership(ctx context.Context, cur, next *Membership) error {
	if cur == nil {
		return uc.memRepo.CreateMembership(ctx, next)
	}
	ok, err := uc.memRepo.CompareAndSwapMembership(ctx, next, cur.Version)
	if err != nil {
		return err
	}
	if !ok {
		return errVersionConflict
	}
	return nil
}

// withVersionRetry 版本冲突时重读重算，有限次重试后返回业务错误
func (uc *MembershipUsecase) withVersionRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < constants.CasMaxRetries; attempt++ {
		err = fn()
		if !stderrors.Is(err, errVersionConflict) {
			return err
		}
		uc.log.Warnf("Membership version conflict, retrying (attempt %d)", attempt+1)
	}
	return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeConcurrencyConflict)
}

// appendDebit 记录一笔会员费用支出流水（金额从用户视角为负）
func (uc *MembershipUsecase) appendDebit(ctx context.Context, userID uint64, entryType string, price int64, txnID, planName string) error {
	entry := &LedgerEntry{
		UserID:         userID,
		Type:           entryType,
		Amount:         -price,
		IdempotencyKey: txnID,
		Metadata:       map[string]string{"plan": planName},
		CreatedAt:      uc.now(),
	}
	if _, err := uc.ledgerRepo.AppendEntry(ctx, entry); err != nil {
		uc.log.Errorf("Failed to append %s entry for user %d: %v", entryType, userID, err)
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeLedgerWriteFailed)
	}
	return nil
}

func (uc *MembershipUsecase) addHistory(ctx context.Context, m *Membership, action string) error {
	history := &MembershipHistory{
		UserID:    m.UserID,
		PlanName:  m.PlanName,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		Status:    m.Status,
		Action:    action,
		CreatedAt: uc.now(),
	}
	if err := uc.historyRepo.AddMembershipHistory(ctx, history); err != nil {
		// 不影响主流程，只记录日志
		uc.log.Errorf("Failed to add membership history for user %d: %v", m.UserID, err)
	}
	return nil
}

// lockUser 获取用户级分布式锁，保证同一用户的状态变更串行执行
func (uc *MembershipUsecase) lockUser(ctx context.Context, userID uint64) (func(), error) {
	if uc.rs == nil {
		return func() {}, nil
	}
	mutex := uc.rs.NewMutex(
		fmt.Sprintf("membership_lock:user:%d", userID),
		redsync.WithExpiry(constants.MembershipLockExpiration),
		redsync.WithTries(constants.MembershipLockRetries),
	)
	if err := mutex.LockContext(ctx); err != nil {
		uc.log.Errorf("Failed to acquire membership lock for user %d: %v", userID, err)
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeConcurrencyConflict)
	}
	return func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			uc.log.Warnf("Failed to unlock membership lock for user %d: %v", userID, err)
		}
	}, nil
}

func (uc *MembershipUsecase) notifyQuietly(ctx context.Context, userID uint64, kind string, payload map[string]string) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(ctx, userID, kind, payload); err != nil {
		uc.log.Warnf("Failed to notify user %d (%s): %v", userID, kind, err)
	}
}
