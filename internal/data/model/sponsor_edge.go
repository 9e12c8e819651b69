package model

import "time"

// SponsorEdge 推荐关系模型
// 每个用户至多一个推荐人，由注册流程写入并保证无环；本服务只读。
type SponsorEdge struct {
	UserID    uint64    `gorm:"primaryKey;column:user_id"`
	SponsorID uint64    `gorm:"column:sponsor_id;not null;index:idx_sponsor_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (SponsorEdge) TableName() string { return "sponsor_edge" }
