package model

import "time"

// UserMembership 用户会员模型
type UserMembership struct {
	ID                    uint64     `gorm:"primaryKey;column:user_membership_id;autoIncrement"`
	UserID                uint64     `gorm:"column:user_id;uniqueIndex"`
	PlanName              string     `gorm:"column:plan_name;type:varchar(50)"`
	Status                string     `gorm:"column:status;type:varchar(20);index:idx_status"` // active, expired, cancelled
	StartTime             time.Time  `gorm:"column:start_time"`
	EndTime               time.Time  `gorm:"column:end_time;index:idx_end_time"`
	EarningsContinueUntil *time.Time `gorm:"column:earnings_continue_until"`
	RenewalCount          int        `gorm:"column:renewal_count;default:0"`
	LastRenewalAt         *time.Time `gorm:"column:last_renewal_at"`
	DailyTasksCompleted   int        `gorm:"column:daily_tasks_completed;default:0"`
	LastTaskAt            *time.Time `gorm:"column:last_task_at"`
	VoucherBalance        int64      `gorm:"column:voucher_balance;default:0"`
	MinWithdrawal         int64      `gorm:"column:min_withdrawal;default:0"`
	Version               uint64     `gorm:"column:version;default:0"` // 乐观锁版本号
	CreatedAt             time.Time  `gorm:"column:created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
}

func (UserMembership) TableName() string { return "user_membership" }
