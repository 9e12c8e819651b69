package biz

import (
	"context"
	"io"
	"time"

	"github.com/umardraz9/mlmpk-sub002/internal/conf"
	"github.com/umardraz9/mlmpk-sub002/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
)

// 测试用内存实现，行为与 data 层实现的接口契约保持一致。

type fakeTx struct{}

func (fakeTx) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryPlanRepo struct {
	plans map[string]*Plan
}

func newMemoryPlanRepo(plans ...*Plan) *memoryPlanRepo {
	r := &memoryPlanRepo{plans: make(map[string]*Plan)}
	for _, p := range plans {
		r.plans[p.Name] = p
	}
	return r
}

func (r *memoryPlanRepo) GetPlan(ctx context.Context, name string) (*Plan, error) {
	return r.plans[name], nil
}

func (r *memoryPlanRepo) ListActivePlans(ctx context.Context) ([]*Plan, error) {
	var out []*Plan
	for _, p := range r.plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type memoryMembershipRepo struct {
	byUser map[uint64]*Membership
	nextID uint64
	clock  *fixedClock
}

func newMemoryMembershipRepo(clock *fixedClock) *memoryMembershipRepo {
	return &memoryMembershipRepo{byUser: make(map[uint64]*Membership), clock: clock}
}

func (r *memoryMembershipRepo) GetMembership(ctx context.Context, userID uint64) (*Membership, error) {
	m, ok := r.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *memoryMembershipRepo) CreateMembership(ctx context.Context, m *Membership) error {
	r.nextID++
	m.ID = r.nextID
	m.Version = 1
	cp := *m
	r.byUser[m.UserID] = &cp
	return nil
}

func (r *memoryMembershipRepo) CompareAndSwapMembership(ctx context.Context, m *Membership, expectedVersion uint64) (bool, error) {
	cur, ok := r.byUser[m.UserID]
	if !ok || cur.Version != expectedVersion {
		return false, nil
	}
	m.ID = cur.ID
	m.Version = expectedVersion + 1
	cp := *m
	r.byUser[m.UserID] = &cp
	return true, nil
}

func (r *memoryMembershipRepo) GetExpiringMemberships(ctx context.Context, daysBeforeExpiry, page, pageSize int) ([]*Membership, int, error) {
	now := r.clock.Now()
	deadline := now.AddDate(0, 0, daysBeforeExpiry)
	var out []*Membership
	for _, m := range r.byUser {
		if m.Status == constants.StatusActive && m.EndTime.After(now) && !m.EndTime.After(deadline) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (r *memoryMembershipRepo) UpdateExpiredMemberships(ctx context.Context) (int, []uint64, error) {
	now := r.clock.Now()
	var uids []uint64
	for uid, m := range r.byUser {
		if m.Status == constants.StatusActive && m.EndTime.Before(now) {
			m.Status = constants.StatusExpired
			m.Version++
			uids = append(uids, uid)
		}
	}
	return len(uids), uids, nil
}

// setStatus 直接改写存量记录的状态，模拟过期扫描等外部状态翻转
func (r *memoryMembershipRepo) setStatus(userID uint64, status string) {
	if m, ok := r.byUser[userID]; ok {
		m.Status = status
		m.Version++
	}
}

type memoryLedgerRepo struct {
	entries []*LedgerEntry
	byKey   map[string]*LedgerEntry
	nextID  uint64
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{byKey: make(map[string]*LedgerEntry)}
}

func (r *memoryLedgerRepo) AppendEntry(ctx context.Context, entry *LedgerEntry) (*LedgerEntry, error) {
	if existing, ok := r.byKey[entry.IdempotencyKey]; ok {
		return existing, nil
	}
	r.nextID++
	cp := *entry
	cp.ID = r.nextID
	r.entries = append(r.entries, &cp)
	r.byKey[cp.IdempotencyKey] = &cp
	return &cp, nil
}

func (r *memoryLedgerRepo) GetEntryByIdempotencyKey(ctx context.Context, key string) (*LedgerEntry, error) {
	entry, ok := r.byKey[key]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

func (r *memoryLedgerRepo) SumLifetimeEarnings(ctx context.Context, userID uint64) (int64, error) {
	var sum int64
	for _, e := range r.entries {
		if e.UserID != userID || e.Amount <= 0 {
			continue
		}
		if e.Type == constants.EntryTypeCommission || e.Type == constants.EntryTypeTaskEarning {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (r *memoryLedgerRepo) ListAcquisitionsSince(ctx context.Context, since time.Time) ([]*LedgerEntry, error) {
	var out []*LedgerEntry
	for _, e := range r.entries {
		if e.Type != constants.EntryTypePurchase && e.Type != constants.EntryTypeUpgrade {
			continue
		}
		if e.CreatedAt.Before(since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// entriesOf 按用户和类型过滤流水（断言辅助）
func (r *memoryLedgerRepo) entriesOf(userID uint64, entryType string) []*LedgerEntry {
	var out []*LedgerEntry
	for _, e := range r.entries {
		if e.UserID == userID && e.Type == entryType {
			out = append(out, e)
		}
	}
	return out
}

type memorySponsorRepo struct {
	sponsors  map[uint64]uint64
	referrals map[uint64]int
}

func newMemorySponsorRepo() *memorySponsorRepo {
	return &memorySponsorRepo{
		sponsors:  make(map[uint64]uint64),
		referrals: make(map[uint64]int),
	}
}

func (r *memorySponsorRepo) GetSponsor(ctx context.Context, userID uint64) (uint64, error) {
	return r.sponsors[userID], nil
}

func (r *memorySponsorRepo) CountReferrals(ctx context.Context, userID uint64) (int, error) {
	return r.referrals[userID], nil
}

type memoryHistoryRepo struct {
	records []*MembershipHistory
}

func (r *memoryHistoryRepo) AddMembershipHistory(ctx context.Context, history *MembershipHistory) error {
	cp := *history
	cp.ID = uint64(len(r.records) + 1)
	r.records = append(r.records, &cp)
	return nil
}

func (r *memoryHistoryRepo) GetMembershipHistory(ctx context.Context, userID uint64, page, pageSize int) ([]*MembershipHistory, int, error) {
	var all []*MembershipHistory
	for _, h := range r.records {
		if h.UserID == userID {
			all = append(all, h)
		}
	}
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, len(all), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

// actionsOf 返回用户按时间顺序的操作序列（断言辅助）
func (r *memoryHistoryRepo) actionsOf(userID uint64) []string {
	var out []string
	for _, h := range r.records {
		if h.UserID == userID {
			out = append(out, h.Action)
		}
	}
	return out
}

type captureNotifier struct {
	kinds map[uint64][]string
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{kinds: make(map[uint64][]string)}
}

func (n *captureNotifier) Notify(ctx context.Context, userID uint64, kind string, payload map[string]string) error {
	n.kinds[userID] = append(n.kinds[userID], kind)
	return nil
}

// fixedClock 可推进的测试时钟
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func (c *fixedClock) AdvanceDays(days int) { c.t = c.t.AddDate(0, 0, days) }

// testEnv 打包两个用例和全部内存依赖
type testEnv struct {
	plans    *memoryPlanRepo
	members  *memoryMembershipRepo
	ledger   *memoryLedgerRepo
	sponsors *memorySponsorRepo
	history  *memoryHistoryRepo
	notifier *captureNotifier
	clock    *fixedClock

	membership *MembershipUsecase
	commission *CommissionUsecase
}

func newTestEnv(plans ...*Plan) *testEnv {
	clock := &fixedClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	env := &testEnv{
		plans:    newMemoryPlanRepo(plans...),
		members:  newMemoryMembershipRepo(clock),
		ledger:   newMemoryLedgerRepo(),
		sponsors: newMemorySponsorRepo(),
		history:  &memoryHistoryRepo{},
		notifier: newCaptureNotifier(),
		clock:    clock,
	}

	config := &conf.Bootstrap{
		Membership: &conf.Membership{
			LifetimeEarningCap:  3000,
			MaxCommissionLevels: 5,
		},
	}
	logger := log.NewStdLogger(io.Discard)

	env.commission = NewCommissionUsecase(env.sponsors, env.ledger, env.notifier, env.plans, nil, config, logger)
	env.commission.now = clock.Now
	env.membership = NewMembershipUsecase(env.plans, env.members, env.ledger, env.history, env.sponsors,
		env.commission, env.notifier, nil, fakeTx{}, config, logger)
	env.membership.now = clock.Now
	return env
}

// basicPlan 测试基准套餐：价格1000，5层固定佣金
func basicPlan() *Plan {
	return &Plan{
		Name:                "BASIC",
		Price:               1000,
		Currency:            "PKR",
		DailyTaskEarning:    30,
		TasksPerDay:         5,
		MaxEarningDays:      30,
		ExtendedEarningDays: 45,
		ExtensionReferrals:  3,
		MinimumWithdrawal:   500,
		VoucherAmount:       500,
		IsActive:            true,
		CommissionLevels: []*CommissionLevel{
			{Level: 1, Amount: 200},
			{Level: 2, Amount: 150},
			{Level: 3, Amount: 100},
			{Level: 4, Amount: 50},
			{Level: 5, Amount: 25},
		},
	}
}

// premiumPlan 高价套餐，升级目标
func premiumPlan() *Plan {
	return &Plan{
		Name:                "PREMIUM",
		Price:               2000,
		Currency:            "PKR",
		DailyTaskEarning:    60,
		TasksPerDay:         8,
		MaxEarningDays:      30,
		ExtendedEarningDays: 60,
		ExtensionReferrals:  5,
		MinimumWithdrawal:   500,
		VoucherAmount:       1000,
		IsActive:            true,
		CommissionLevels: []*CommissionLevel{
			{Level: 1, Amount: 400},
			{Level: 2, Amount: 300},
			{Level: 3, Amount: 200},
			{Level: 4, Amount: 100},
			{Level: 5, Amount: 50},
		},
	}
}
