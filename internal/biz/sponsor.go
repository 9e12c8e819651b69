package biz

import "context"

// SponsorRepo 推荐关系仓库接口（核心只读，推荐关系由注册流程写入并保证无环）
type SponsorRepo interface {
	// GetSponsor 获取用户的直接推荐人，返回 0 表示没有推荐人
	GetSponsor(ctx context.Context, userID uint64) (uint64, error)
	// CountReferrals 统计用户的直推人数（延长收益窗口的资格判断用）
	CountReferrals(ctx context.Context, userID uint64) (int, error)
}
