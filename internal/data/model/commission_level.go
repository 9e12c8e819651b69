package model

import "time"

// CommissionLevel 套餐逐级佣金模型
// 同一套餐内层级唯一且从1连续递增
type CommissionLevel struct {
	CommissionLevelID uint64    `gorm:"primaryKey;column:commission_level_id;autoIncrement"`
	PlanName          string    `gorm:"column:plan_name;type:varchar(50);not null;index:idx_plan_name;uniqueIndex:uk_plan_level"`
	Level             int       `gorm:"column:level;not null;uniqueIndex:uk_plan_level"` // 1..5
	Amount            int64     `gorm:"column:amount;not null"`
	Description       string    `gorm:"column:description"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CommissionLevel) TableName() string { return "commission_level" }
