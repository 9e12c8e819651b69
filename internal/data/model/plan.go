package model

import "time"

// Plan 会员套餐模型
type Plan struct {
	Name                string    `gorm:"primaryKey;column:name;type:varchar(50)"` // 套餐唯一标识，如 BASIC
	Description         string    `gorm:"column:description"`
	Price               int64     `gorm:"column:price;not null"`
	Currency            string    `gorm:"column:currency;type:varchar(10);default:'PKR'"`
	DailyTaskEarning    int64     `gorm:"column:daily_task_earning"`
	TasksPerDay         int       `gorm:"column:tasks_per_day"`
	MaxEarningDays      int       `gorm:"column:max_earning_days"`
	ExtendedEarningDays int       `gorm:"column:extended_earning_days"`
	ExtensionReferrals  int       `gorm:"column:extension_referrals"`
	MinimumWithdrawal   int64     `gorm:"column:minimum_withdrawal"`
	VoucherAmount       int64     `gorm:"column:voucher_amount"`
	IsActive            bool      `gorm:"column:is_active;default:true;index:idx_is_active"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Plan) TableName() string { return "plan" }
