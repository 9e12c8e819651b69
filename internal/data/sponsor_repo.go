package data

import (
	"context"
	"errors"

	"github.com/umardraz9/mlmpk-sub002/internal/biz"
	"github.com/umardraz9/mlmpk-sub002/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// sponsorRepo 推荐关系仓库实现（只读）
type sponsorRepo struct {
	data *Data
	log  *log.Helper
}

// NewSponsorRepo 创建推荐关系仓库
func NewSponsorRepo(data *Data, logger log.Logger) biz.SponsorRepo {
	return &sponsorRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetSponsor 获取用户的直接推荐人，没有推荐人时返回 (0, nil)
func (r *sponsorRepo) GetSponsor(ctx context.Context, userID uint64) (uint64, error) {
	var m model.SponsorEdge
	err := r.data.DB(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get sponsor for user %d: %v", userID, err)
		return 0, err
	}
	return m.SponsorID, nil
}

// CountReferrals 统计用户的直推人数
func (r *sponsorRepo) CountReferrals(ctx context.Context, userID uint64) (int, error) {
	var total int64
	if err := r.data.DB(ctx).Model(&model.SponsorEdge{}).
		Where("sponsor_id = ?", userID).
		Count(&total).Error; err != nil {
		r.log.Errorf("Failed to count referrals for user %d: %v", userID, err)
		return 0, err
	}
	return int(total), nil
}
