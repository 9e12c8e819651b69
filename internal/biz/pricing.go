package biz

import (
	"math"

	"github.com/umardraz9/mlmpk-sub002/internal/constants"
)

// 定价计算器: 纯函数，无副作用。
// 金额单位为整数货币单位（本业务币种无辅币）。

// RenewalPrice 根据基础价格和已续费次数计算续费价格
// renewalCount == 0 表示首次续费（非首次购买），收全价;
// renewalCount == 1 享受9折忠诚折扣; renewalCount >= 2 固定8折，不再递减。
func RenewalPrice(basePrice int64, renewalCount int) int64 {
	switch {
	case renewalCount <= 0:
		return basePrice
	case renewalCount == 1:
		return roundAmount(float64(basePrice) * constants.FirstRenewalDiscount)
	default:
		return roundAmount(float64(basePrice) * constants.LoyalRenewalDiscount)
	}
}

// IsUpgrade 判断目标套餐是否构成升级（严格高于当前套餐价格）
func IsUpgrade(currentPlanPrice, targetPlanPrice int64) bool {
	return targetPlanPrice > currentPlanPrice
}

// ExtensionEligible 判断推荐人数是否满足解锁延长收益窗口的条件
func ExtensionEligible(referralsRequired, actualReferralCount int) bool {
	return actualReferralCount >= referralsRequired
}

// CommissionByRate 按平台默认比例计算佣金（套餐未配置逐级金额时的兜底路径）
func CommissionByRate(amount int64, rate float64) int64 {
	if rate <= 0 {
		return 0
	}
	return roundAmount(float64(amount) * rate)
}

// roundAmount 四舍五入到最接近的整数货币单位
func roundAmount(v float64) int64 {
	return int64(math.Round(v))
}
