package biz

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/umardraz9/mlmpk-sub002/internal/conf"
	"github.com/umardraz9/mlmpk-sub002/internal/constants"
	"github.com/umardraz9/mlmpk-sub002/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
)

// CommissionUsecase 多级推荐佣金分配引擎
//
// 一次合格的获客事件（购买或升级）沿推荐链向上最多分配5层佣金。
// 引擎按获客交易ID幂等：同一交易重复触发不会重复入账任何层级。
type CommissionUsecase struct {
	sponsorRepo SponsorRepo
	ledgerRepo  LedgerRepo
	notifier    NotificationClient
	planRepo    PlanRepo
	rs          *redsync.Redsync
	config      *conf.Bootstrap
	log         *log.Helper
	now         func() time.Time
}

// NewCommissionUsecase 创建佣金业务用例
func NewCommissionUsecase(
	sponsorRepo SponsorRepo,
	ledgerRepo LedgerRepo,
	notifier NotificationClient,
	planRepo PlanRepo,
	rs *redsync.Redsync,
	config *conf.Bootstrap,
	logger log.Logger,
) *CommissionUsecase {
	return &CommissionUsecase{
		sponsorRepo: sponsorRepo,
		ledgerRepo:  ledgerRepo,
		notifier:    notifier,
		planRepo:    planRepo,
		rs:          rs,
		config:      config,
		log:         log.NewHelper(logger),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Distribute 沿购买者的推荐链向上逐层分配佣金
//
// 有界循环而不是递归：即使上游数据异常出现环，也保证在最大层级处终止。
// 各层级相互独立，单层失败只记录并继续，最后统一返回分配未完成错误；
// 重新调用对已入账层级是无操作（幂等键查账本判重）。
func (uc *CommissionUsecase) Distribute(ctx context.Context, purchaserUID uint64, plan *Plan, txnID string) error {
	uc.log.Infof("Distribute: purchaser=%d, plan=%s, txn=%s", purchaserUID, plan.Name, txnID)

	failed := 0
	current := purchaserUID
	for level := 1; level <= uc.maxLevels(); level++ {
		sponsorID, err := uc.sponsorRepo.GetSponsor(ctx, current)
		if err != nil {
			uc.log.Errorf("Failed to resolve sponsor at level %d for txn %s: %v", level, txnID, err)
			failed++
			break
		}
		if sponsorID == 0 {
			// 推荐链到头，不再向上查找
			break
		}

		amount := uc.levelAmount(plan, level)
		if amount > 0 {
			if err := uc.creditLevel(ctx, txnID, plan, purchaserUID, sponsorID, level, amount); err != nil {
				uc.log.Errorf("Failed to credit level %d commission for txn %s: %v", level, txnID, err)
				failed++
			}
		}
		current = sponsorID
	}

	if failed > 0 {
		// 未完成的层级留给对账回放补齐
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeDistributionFailed)
	}
	return nil
}

// Redistribute 按获客交易ID重放佣金分配（崩溃恢复/对账用，幂等）
func (uc *CommissionUsecase) Redistribute(ctx context.Context, txnID string) error {
	entry, err := uc.ledgerRepo.GetEntryByIdempotencyKey(ctx, txnID)
	if err != nil {
		return err
	}
	if entry == nil {
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeLedgerEntryNotFound)
	}
	if entry.Type != constants.EntryTypePurchase && entry.Type != constants.EntryTypeUpgrade {
		// 只有购买和升级是合格的获客事件
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeLedgerEntryNotFound)
	}

	plan, err := uc.planRepo.GetPlan(ctx, entry.Metadata["plan"])
	if err != nil || plan == nil {
		uc.log.Errorf("Failed to get plan %s for redistribution of txn %s: %v", entry.Metadata["plan"], txnID, err)
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
	}

	return uc.Distribute(ctx, entry.UserID, plan, txnID)
}

// ReconcileRecent 回放最近的获客流水，补齐中断的佣金分配
// 返回 (回放总数, 仍未完成数)。
func (uc *CommissionUsecase) ReconcileRecent(ctx context.Context, days int) (int, int, error) {
	if days < 1 {
		days = constants.DefaultReconcileDays
	}
	since := uc.now().AddDate(0, 0, -days)

	entries, err := uc.ledgerRepo.ListAcquisitionsSince(ctx, since)
	if err != nil {
		uc.log.Errorf("Failed to list acquisitions since %v: %v", since, err)
		return 0, 0, err
	}

	unresolved := 0
	for _, entry := range entries {
		if err := uc.Redistribute(ctx, entry.IdempotencyKey); err != nil {
			uc.log.Warnf("Reconciliation left txn %s unresolved: %v", entry.IdempotencyKey, err)
			unresolved++
		}
	}

	uc.log.Infof("Commission reconciliation completed: replayed=%d, unresolved=%d", len(entries), unresolved)
	return len(entries), unresolved, nil
}

// levelAmount 取套餐逐级固定金额；套餐未配置该层时退回平台默认比例表
func (uc *CommissionUsecase) levelAmount(plan *Plan, level int) int64 {
	if cl := plan.CommissionAt(level); cl != nil {
		return cl.Amount
	}
	if len(plan.CommissionLevels) > 0 {
		// 套餐自带佣金表即为权威配置，缺的层级就是不分
		return 0
	}
	rates := uc.defaultRates()
	if level <= len(rates) {
		return CommissionByRate(plan.Price, rates[level-1])
	}
	return 0
}

// creditLevel 为单个层级入账，瞬时失败独立重试
func (uc *CommissionUsecase) creditLevel(ctx context.Context, txnID string, plan *Plan, purchaserUID, sponsorID uint64, level int, amount int64) error {
	var lastErr error
	for attempt := 0; attempt < constants.CommissionRetries; attempt++ {
		credited, truncated, err := uc.tryCredit(ctx, txnID, plan, purchaserUID, sponsorID, level, amount)
		if err != nil {
			lastErr = err
			continue
		}
		if credited > 0 {
			if truncated {
				uc.log.Warnf("Commission cap-truncated: sponsor=%d, level=%d, credited=%d of %d", sponsorID, level, credited, amount)
			}
			// 通知尽力而为，失败不回滚已入账的佣金
			if uc.notifier != nil {
				payload := map[string]string{
					"level":      strconv.Itoa(level),
					"amount":     strconv.FormatInt(credited, 10),
					"plan":       plan.Name,
					"source_uid": strconv.FormatUint(purchaserUID, 10),
				}
				if err := uc.notifier.Notify(ctx, sponsorID, constants.NotifyKindCommissionCredited, payload); err != nil {
					uc.log.Warnf("Failed to notify sponsor %d of commission: %v", sponsorID, err)
				}
			}
		}
		return nil
	}
	return lastErr
}

// tryCredit 单次入账尝试：幂等判重 -> 取上限锁 -> 读余量 -> 截断 -> 追加流水
// 上限的读和写在同一把锁内完成，避免同一推荐人并发入账时读到过期余量。
func (uc *CommissionUsecase) tryCredit(ctx context.Context, txnID string, plan *Plan, purchaserUID, sponsorID uint64, level int, amount int64) (int64, bool, error) {
	key := fmt.Sprintf("%s:%d:%d", txnID, sponsorID, level)

	// 幂等检查：该交易该层已入账则跳过（重试/重放场景）
	existing, err := uc.ledgerRepo.GetEntryByIdempotencyKey(ctx, key)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		uc.log.Infof("Commission already credited, skipping: sponsor=%d, level=%d, txn=%s", sponsorID, level, txnID)
		return 0, false, nil
	}

	unlock, err := uc.lockCap(ctx, sponsorID)
	if err != nil {
		return 0, false, err
	}
	defer unlock()

	credit, err := uc.remainingCapacity(ctx, sponsorID, amount)
	if err != nil {
		return 0, false, err
	}
	if credit <= 0 {
		// 上限已满：不入账也不通知
		uc.log.Infof("Commission skipped, lifetime cap reached: sponsor=%d, level=%d, txn=%s", sponsorID, level, txnID)
		return 0, false, nil
	}
	truncated := credit < amount

	entry := &LedgerEntry{
		UserID:         sponsorID,
		Type:           constants.EntryTypeCommission,
		Amount:         credit,
		IdempotencyKey: key,
		Metadata: map[string]string{
			"level":         strconv.Itoa(level),
			"source_uid":    strconv.FormatUint(purchaserUID, 10),
			"plan":          plan.Name,
			"cap_truncated": strconv.FormatBool(truncated),
		},
		CreatedAt: uc.now(),
	}
	if _, err := uc.ledgerRepo.AppendEntry(ctx, entry); err != nil {
		return 0, false, err
	}
	return credit, truncated, nil
}

// remainingCapacity 计算在终身收益上限内还能入账多少，最多 amount
func (uc *CommissionUsecase) remainingCapacity(ctx context.Context, userID uint64, amount int64) (int64, error) {
	earned, err := uc.ledgerRepo.SumLifetimeEarnings(ctx, userID)
	if err != nil {
		return 0, err
	}
	remaining := uc.lifetimeCap() - earned
	if remaining <= 0 {
		return 0, nil
	}
	if amount > remaining {
		return remaining, nil
	}
	return amount, nil
}

// lockCap 获取推荐人收益上限锁，序列化同一用户的 读上限-写入账 临界区
func (uc *CommissionUsecase) lockCap(ctx context.Context, userID uint64) (func(), error) {
	if uc.rs == nil {
		return func() {}, nil
	}
	mutex := uc.rs.NewMutex(
		fmt.Sprintf("commission_cap_lock:user:%d", userID),
		redsync.WithExpiry(constants.CommissionCapLockExpiration),
		redsync.WithTries(constants.CommissionCapLockRetries),
	)
	if err := mutex.LockContext(ctx); err != nil {
		uc.log.Errorf("Failed to acquire cap lock for user %d: %v", userID, err)
		return nil, err
	}
	return func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			uc.log.Warnf("Failed to unlock cap lock for user %d: %v", userID, err)
		}
	}, nil
}

func (uc *CommissionUsecase) lifetimeCap() int64 {
	if uc.config != nil && uc.config.Membership != nil && uc.config.Membership.LifetimeEarningCap > 0 {
		return uc.config.Membership.LifetimeEarningCap
	}
	return constants.DefaultLifetimeEarningCap
}

func (uc *CommissionUsecase) maxLevels() int {
	if uc.config != nil && uc.config.Membership != nil && uc.config.Membership.MaxCommissionLevels > 0 {
		if uc.config.Membership.MaxCommissionLevels < constants.MaxCommissionLevels {
			return uc.config.Membership.MaxCommissionLevels
		}
	}
	return constants.MaxCommissionLevels
}

func (uc *CommissionUsecase) defaultRates() []float64 {
	if uc.config != nil && uc.config.Membership != nil {
		return uc.config.Membership.DefaultCommissionRates
	}
	return nil
}
