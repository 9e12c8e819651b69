package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenewalPrice(t *testing.T) {
	tests := []struct {
		name         string
		basePrice    int64
		renewalCount int
		want         int64
	}{
		{"首次续费收全价", 1000, 0, 1000},
		{"第二次续费9折", 1000, 1, 900},
		{"第三次续费8折", 1000, 2, 800},
		{"之后固定8折不再递减", 1000, 9, 800},
		{"负的续费次数按全价处理", 1000, -1, 1000},
		{"9折四舍五入", 999, 1, 899},
		{"8折四舍五入进位", 1019, 2, 815},
		{"零价格", 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenewalPrice(tt.basePrice, tt.renewalCount))
		})
	}
}

func TestRenewalPriceProgression(t *testing.T) {
	// 同一套餐连续续费的价格序列: 全价 -> 9折 -> 8折 -> 8折
	base := int64(1000)
	var prices []int64
	for count := 0; count < 4; count++ {
		prices = append(prices, RenewalPrice(base, count))
	}
	assert.Equal(t, []int64{1000, 900, 800, 800}, prices)
}

func TestIsUpgrade(t *testing.T) {
	assert.True(t, IsUpgrade(1000, 2000))
	assert.False(t, IsUpgrade(1000, 1000), "同价不构成升级")
	assert.False(t, IsUpgrade(2000, 1000), "降价不构成升级")
}

func TestExtensionEligible(t *testing.T) {
	assert.False(t, ExtensionEligible(3, 2))
	assert.True(t, ExtensionEligible(3, 3))
	assert.True(t, ExtensionEligible(3, 10))
	assert.True(t, ExtensionEligible(0, 0), "不要求推荐人数时始终满足")
}

func TestCommissionByRate(t *testing.T) {
	assert.Equal(t, int64(200), CommissionByRate(1000, 0.20))
	assert.Equal(t, int64(150), CommissionByRate(1000, 0.15))
	assert.Equal(t, int64(0), CommissionByRate(1000, 0))
	assert.Equal(t, int64(0), CommissionByRate(1000, -0.1))
	// 四舍五入
	assert.Equal(t, int64(33), CommissionByRate(333, 0.10))
	assert.Equal(t, int64(17), CommissionByRate(333, 0.05))
}
