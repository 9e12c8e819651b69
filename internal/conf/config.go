package conf

import (
	"fmt"
)

type Bootstrap struct {
	Server     *Server     `yaml:"server" json:"server"`
	Data       *Data       `yaml:"data" json:"data"`
	Membership *Membership `yaml:"membership" json:"membership"`
	Log        *Log        `yaml:"log" json:"log"`
}

type Server struct {
	Http struct {
		Addr    string `yaml:"addr" json:"addr"`
		Timeout string `yaml:"timeout" json:"timeout"`
	} `yaml:"http" json:"http"`
}

type Data struct {
	Database struct {
		Driver          string `yaml:"driver" json:"driver"`
		Source          string `yaml:"source" json:"source"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	} `yaml:"database" json:"database"`
	Redis struct {
		Addr         string `yaml:"addr" json:"addr"`
		Password     string `yaml:"password" json:"password"`
		Db           int32  `yaml:"db" json:"db"`
		ReadTimeout  string `yaml:"read_timeout" json:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout" json:"write_timeout"`
	} `yaml:"redis" json:"redis"`
}

// Membership 会员/佣金业务配置
type Membership struct {
	// LifetimeEarningCap 单个用户终身收益上限（任务收益 + 推荐佣金共享）
	LifetimeEarningCap int64 `yaml:"lifetime_earning_cap" json:"lifetime_earning_cap"`
	// MaxCommissionLevels 佣金分配最大层级
	MaxCommissionLevels int `yaml:"max_commission_levels" json:"max_commission_levels"`
	// DefaultCommissionRates 平台默认佣金比例表（套餐未配置逐级金额时的兜底，按层级顺序）
	DefaultCommissionRates []float64 `yaml:"default_commission_rates" json:"default_commission_rates"`
	// ExpiryCheckDays 过期提醒提前天数
	ExpiryCheckDays int `yaml:"expiry_check_days" json:"expiry_check_days"`
	// ReconcileDays 佣金对账回放天数
	ReconcileDays int `yaml:"reconcile_days" json:"reconcile_days"`
}

type Log struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	Output     string `yaml:"output" json:"output"`
	FilePath   string `yaml:"file_path" json:"file_path"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// Validate validates the configuration
func (b *Bootstrap) Validate() error {
	if b.Server == nil {
		return fmt.Errorf("server configuration is required")
	}
	if b.Server.Http.Addr == "" {
		return fmt.Errorf("server.http.addr is required")
	}
	if b.Data == nil {
		return fmt.Errorf("data configuration is required")
	}
	if b.Data.Database.Source == "" {
		return fmt.Errorf("data.database.source is required")
	}
	if b.Membership != nil {
		if b.Membership.LifetimeEarningCap < 0 {
			return fmt.Errorf("membership.lifetime_earning_cap must not be negative")
		}
		if b.Membership.MaxCommissionLevels < 0 {
			return fmt.Errorf("membership.max_commission_levels must not be negative")
		}
	}
	if b.Log == nil {
		return fmt.Errorf("log configuration is required")
	}
	return nil
}
