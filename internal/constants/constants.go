package constants

import "time"

// 分页相关常量
const (
	// DefaultPageSize 默认分页大小
	DefaultPageSize = 10
	// MaxPageSize 最大分页大小
	MaxPageSize = 100
)

// 会员相关常量
const (
	// DefaultExpiryDays 默认过期检查天数
	DefaultExpiryDays = 7
	// MaxExpiryDays 最大过期检查天数
	MaxExpiryDays = 30
	// DefaultLifetimeEarningCap 默认终身收益上限（任务收益 + 推荐佣金共享同一上限）
	DefaultLifetimeEarningCap = int64(3000)
	// DefaultReconcileDays 佣金对账回放默认天数
	DefaultReconcileDays = 3
)

// 佣金相关常量
const (
	// MaxCommissionLevels 佣金分配最大层级
	MaxCommissionLevels = 5
	// CommissionRetries 单层佣金入账重试次数
	CommissionRetries = 3
)

// 续费折扣系数
const (
	// FirstRenewalDiscount 首次续费折扣系数 (9折)
	FirstRenewalDiscount = 0.90
	// LoyalRenewalDiscount 第二次及以后续费折扣系数 (8折，不再递减)
	LoyalRenewalDiscount = 0.80
)

// 乐观锁相关常量
const (
	// CasMaxRetries 会员记录版本冲突最大重试次数
	CasMaxRetries = 3
)

// 分布式锁相关常量
const (
	// MembershipLockExpiration 会员状态变更锁过期时间
	MembershipLockExpiration = 30 * time.Second
	// MembershipLockRetries 会员状态变更锁重试次数
	MembershipLockRetries = 8
	// CommissionCapLockExpiration 佣金上限检查锁过期时间
	CommissionCapLockExpiration = 10 * time.Second
	// CommissionCapLockRetries 佣金上限检查锁重试次数
	CommissionCapLockRetries = 16
)

// 会员状态
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// 会员操作
const (
	ActionCreated   = "created"
	ActionRenewed   = "renewed"
	ActionUpgraded  = "upgraded"
	ActionExpired   = "expired"
	ActionCancelled = "cancelled"
	ActionExtended  = "extended"
)

// 流水类型（账本为余额的唯一事实来源）
const (
	// EntryTypePurchase 首次购买/复购会员套餐
	EntryTypePurchase = "purchase"
	// EntryTypeRenewal 会员续费
	EntryTypeRenewal = "membership_renewal"
	// EntryTypeUpgrade 会员升级
	EntryTypeUpgrade = "membership_upgrade"
	// EntryTypeCommission 推荐佣金
	EntryTypeCommission = "commission"
	// EntryTypeTaskEarning 每日任务收益
	EntryTypeTaskEarning = "task_earning"
)

// 通知类型（与notification-service保持一致）
const (
	// NotifyKindMembershipActivated 会员开通成功
	NotifyKindMembershipActivated = "membership_activated"
	// NotifyKindMembershipRenewed 会员续费成功
	NotifyKindMembershipRenewed = "membership_renewed"
	// NotifyKindMembershipUpgraded 会员升级成功
	NotifyKindMembershipUpgraded = "membership_upgraded"
	// NotifyKindMembershipExpiring 会员即将过期提醒
	NotifyKindMembershipExpiring = "membership_expiring"
	// NotifyKindCommissionCredited 佣金到账
	NotifyKindCommissionCredited = "commission_credited"
)

// NotificationChannel 通知事件发布的 Redis 频道
const NotificationChannel = "membership:notifications"
