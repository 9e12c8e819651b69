package model

import "time"

// MembershipHistory 会员历史模型
type MembershipHistory struct {
	MembershipHistoryID uint64    `gorm:"primaryKey;column:membership_history_id;autoIncrement"`
	UserID              uint64    `gorm:"column:user_id;index:idx_user_id"`
	PlanName            string    `gorm:"column:plan_name;type:varchar(50)"`
	StartTime           time.Time `gorm:"column:start_time"`
	EndTime             time.Time `gorm:"column:end_time"`
	Status              string    `gorm:"column:status;type:varchar(20)"`
	Action              string    `gorm:"column:action;type:enum('created','renewed','upgraded','expired','cancelled','extended')"` // 操作类型
	CreatedAt           time.Time `gorm:"column:created_at"`
}

func (MembershipHistory) TableName() string { return "membership_history" }
