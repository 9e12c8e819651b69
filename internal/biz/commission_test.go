package biz

import (
	"context"
	"fmt"
	"testing"

	"github.com/umardraz9/mlmpk-sub002/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 推荐链: 4 -> 3 -> 2 -> 1 (1 是链顶，没有推荐人)
func chainOfFour(env *testEnv) {
	env.sponsors.sponsors[4] = 3
	env.sponsors.sponsors[3] = 2
	env.sponsors.sponsors[2] = 1
}

func commissionAmount(t *testing.T, env *testEnv, txnID string, sponsorID uint64, level int) int64 {
	t.Helper()
	key := fmt.Sprintf("%s:%d:%d", txnID, sponsorID, level)
	entry, err := env.ledger.GetEntryByIdempotencyKey(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, entry, "expected commission entry for key %s", key)
	return entry.Amount
}

func TestDistributeWalksSponsorChain(t *testing.T) {
	env := newTestEnv(basicPlan())
	chainOfFour(env)
	ctx := context.Background()

	// 用户4购买: 3/2/1 分别拿 L1/L2/L3，链在此终止
	require.NoError(t, env.commission.Distribute(ctx, 4, basicPlan(), "txn-1"))

	assert.Equal(t, int64(200), commissionAmount(t, env, "txn-1", 3, 1))
	assert.Equal(t, int64(150), commissionAmount(t, env, "txn-1", 2, 2))
	assert.Equal(t, int64(100), commissionAmount(t, env, "txn-1", 1, 3))

	// 链只有3层，L4/L5 无人可分
	assert.Len(t, env.ledger.entriesOf(1, constants.EntryTypeCommission), 1)
	assert.Len(t, env.ledger.entriesOf(2, constants.EntryTypeCommission), 1)
	assert.Len(t, env.ledger.entriesOf(3, constants.EntryTypeCommission), 1)

	// 购买者本人不拿佣金
	assert.Empty(t, env.ledger.entriesOf(4, constants.EntryTypeCommission))
}

func TestDistributeIsIdempotent(t *testing.T) {
	env := newTestEnv(basicPlan())
	chainOfFour(env)
	ctx := context.Background()

	require.NoError(t, env.commission.Distribute(ctx, 4, basicPlan(), "txn-1"))
	// 崩溃恢复/重复触发: 重放不会重复入账
	require.NoError(t, env.commission.Distribute(ctx, 4, basicPlan(), "txn-1"))

	assert.Len(t, env.ledger.entriesOf(3, constants.EntryTypeCommission), 1)
	assert.Len(t, env.ledger.entriesOf(2, constants.EntryTypeCommission), 1)
	assert.Len(t, env.ledger.entriesOf(1, constants.EntryTypeCommission), 1)

	// 不同交易照常各自入账
	require.NoError(t, env.commission.Distribute(ctx, 4, basicPlan(), "txn-2"))
	assert.Len(t, env.ledger.entriesOf(3, constants.EntryTypeCommission), 2)
}

func TestDistributeTruncatesAtLifetimeCap(t *testing.T) {
	env := newTestEnv(basicPlan())
	env.sponsors.sponsors[4] = 3
	ctx := context.Background()

	// 推荐人3已累计收益2950，上限3000
	_, err := env.ledger.AppendEntry(ctx, &LedgerEntry{
		UserID:         3,
		Type:           constants.EntryTypeCommission,
		Amount:         2950,
		IdempotencyKey: "seed:3:1",
		CreatedAt:      env.clock.Now(),
	})
	require.NoError(t, err)

	// L1 应得200，只能入账50
	require.NoError(t, env.commission.Distribute(ctx, 4, basicPlan(), "txn-1"))

	assert.Equal(t, int64(50), commissionAmount(t, env, "txn-1", 3, 1))
	entry, err := env.ledger.GetEntryByIdempotencyKey(ctx, "txn-1:3:1")
	require.NoError(t, err)
	assert.Equal(t, "true", entry.Metadata["cap_truncated"])

	sum, err := env.ledger.SumLifetimeEarnings(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), sum)

	// 上限已满: 后续获客不再产生任何入账和通知
	before := len(env.notifier.kinds[3])
	require.NoError(t, env.commission.Distribute(ctx, 4, basicPlan(), "txn-2"))
	entry2, err := env.ledger.GetEntryByIdempotencyKey(ctx, "txn-2:3:1")
	require.NoError(t, err)
	assert.Nil(t, entry2)
	assert.Len(t, env.notifier.kinds[3], before)
}

func TestDistributeTerminatesOnSponsorCycle(t *testing.T) {
	env := newTestEnv(basicPlan())
	// 异常数据: 1 和 2 互为推荐人
	env.sponsors.sponsors[1] = 2
	env.sponsors.sponsors[2] = 1
	ctx := context.Background()

	require.NoError(t, env.commission.Distribute(ctx, 1, basicPlan(), "txn-1"))

	// 有界循环: 最多5层后终止，不会死循环
	total := len(env.ledger.entriesOf(1, constants.EntryTypeCommission)) +
		len(env.ledger.entriesOf(2, constants.EntryTypeCommission))
	assert.Equal(t, 5, total)
}

func TestLevelAmountFallsBackToDefaultRates(t *testing.T) {
	// 套餐未配置佣金表时退回平台默认比例
	plain := basicPlan()
	plain.Name = "PLAIN"
	plain.CommissionLevels = nil
	env := newTestEnv(plain)
	env.commission.config.Membership.DefaultCommissionRates = []float64{0.20, 0.15, 0.10}
	chainOfFour(env)
	ctx := context.Background()

	require.NoError(t, env.commission.Distribute(ctx, 4, plain, "txn-1"))

	assert.Equal(t, int64(200), commissionAmount(t, env, "txn-1", 3, 1))
	assert.Equal(t, int64(150), commissionAmount(t, env, "txn-1", 2, 2))
	assert.Equal(t, int64(100), commissionAmount(t, env, "txn-1", 1, 3))
}

func TestPartialCommissionTableIsAuthoritative(t *testing.T) {
	// 套餐只配了2层: 缺的层级就是不分，不退回默认比例
	partial := basicPlan()
	partial.Name = "PARTIAL"
	partial.CommissionLevels = []*CommissionLevel{
		{Level: 1, Amount: 300},
		{Level: 2, Amount: 100},
	}
	env := newTestEnv(partial)
	env.commission.config.Membership.DefaultCommissionRates = []float64{0.20, 0.15, 0.10}
	chainOfFour(env)
	ctx := context.Background()

	require.NoError(t, env.commission.Distribute(ctx, 4, partial, "txn-1"))

	assert.Equal(t, int64(300), commissionAmount(t, env, "txn-1", 3, 1))
	assert.Equal(t, int64(100), commissionAmount(t, env, "txn-1", 2, 2))
	assert.Empty(t, env.ledger.entriesOf(1, constants.EntryTypeCommission), "L3 未配置，不分佣")
}

func TestDistributeNotifiesCreditedSponsors(t *testing.T) {
	env := newTestEnv(basicPlan())
	env.sponsors.sponsors[4] = 3
	ctx := context.Background()

	require.NoError(t, env.commission.Distribute(ctx, 4, basicPlan(), "txn-1"))
	assert.Contains(t, env.notifier.kinds[3], constants.NotifyKindCommissionCredited)

	// 幂等跳过的层级不重复通知
	require.NoError(t, env.commission.Distribute(ctx, 4, basicPlan(), "txn-1"))
	count := 0
	for _, kind := range env.notifier.kinds[3] {
		if kind == constants.NotifyKindCommissionCredited {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRedistributeReplaysAcquisition(t *testing.T) {
	env := newTestEnv(basicPlan())
	chainOfFour(env)
	ctx := context.Background()

	// 购买流水已落账，但分配中断（没有任何佣金流水）
	_, err := env.ledger.AppendEntry(ctx, &LedgerEntry{
		UserID:         4,
		Type:           constants.EntryTypePurchase,
		Amount:         -1000,
		IdempotencyKey: "txn-1",
		Metadata:       map[string]string{"plan": "BASIC"},
		CreatedAt:      env.clock.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, env.commission.Redistribute(ctx, "txn-1"))
	assert.Equal(t, int64(200), commissionAmount(t, env, "txn-1", 3, 1))
	assert.Equal(t, int64(150), commissionAmount(t, env, "txn-1", 2, 2))
	assert.Equal(t, int64(100), commissionAmount(t, env, "txn-1", 1, 3))
}

func TestRedistributeRejectsNonAcquisitions(t *testing.T) {
	env := newTestEnv(basicPlan())
	ctx := context.Background()

	assert.Error(t, env.commission.Redistribute(ctx, "no-such-txn"))

	// 续费流水不是获客事件
	_, err := env.ledger.AppendEntry(ctx, &LedgerEntry{
		UserID:         4,
		Type:           constants.EntryTypeRenewal,
		Amount:         -900,
		IdempotencyKey: "renew-1",
		Metadata:       map[string]string{"plan": "BASIC"},
		CreatedAt:      env.clock.Now(),
	})
	require.NoError(t, err)
	assert.Error(t, env.commission.Redistribute(ctx, "renew-1"))
}

func TestReconcileRecentReplaysAcquisitions(t *testing.T) {
	env := newTestEnv(basicPlan())
	chainOfFour(env)
	ctx := context.Background()

	seed := func(txnID, plan string, createdDaysAgo int) {
		_, err := env.ledger.AppendEntry(ctx, &LedgerEntry{
			UserID:         4,
			Type:           constants.EntryTypePurchase,
			Amount:         -1000,
			IdempotencyKey: txnID,
			Metadata:       map[string]string{"plan": plan},
			CreatedAt:      env.clock.Now().AddDate(0, 0, -createdDaysAgo),
		})
		require.NoError(t, err)
	}
	seed("txn-ok", "BASIC", 1)
	seed("txn-bad-plan", "GONE", 1)
	seed("txn-old", "BASIC", 10)

	replayed, unresolved, err := env.commission.ReconcileRecent(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, replayed, "超出回放窗口的旧流水不参与")
	assert.Equal(t, 1, unresolved, "套餐缺失的交易留待人工处理")

	// 正常交易的佣金补齐了
	assert.Equal(t, int64(200), commissionAmount(t, env, "txn-ok", 3, 1))

	// 再次对账是无操作
	_, unresolved, err = env.commission.ReconcileRecent(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, unresolved)
	assert.Len(t, env.ledger.entriesOf(3, constants.EntryTypeCommission), 1)
}

func TestPurchaseDistributesThroughFullChain(t *testing.T) {
	// 端到端: 会员购买后沿链分佣，再购买(升级)按新套餐佣金表分配
	env := newTestEnv(basicPlan(), premiumPlan())
	env.sponsors.sponsors[10] = 11
	env.sponsors.sponsors[11] = 12
	ctx := context.Background()

	_, err := env.membership.Purchase(ctx, 10, "BASIC")
	require.NoError(t, err)

	l1 := env.ledger.entriesOf(11, constants.EntryTypeCommission)
	require.Len(t, l1, 1)
	assert.Equal(t, int64(200), l1[0].Amount)
	l2 := env.ledger.entriesOf(12, constants.EntryTypeCommission)
	require.Len(t, l2, 1)
	assert.Equal(t, int64(150), l2[0].Amount)

	// 升级是新的获客事件，按 PREMIUM 的佣金表再分一轮
	_, err = env.membership.Upgrade(ctx, 10, "PREMIUM")
	require.NoError(t, err)

	l1 = env.ledger.entriesOf(11, constants.EntryTypeCommission)
	require.Len(t, l1, 2)
	assert.Equal(t, int64(400), l1[1].Amount)
}
