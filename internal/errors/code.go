package errors

import (
	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	i18nPkg "github.com/gaoyong06/go-pkg/middleware/i18n"
)

func init() {
	// 初始化全局错误管理器（使用项目特定的配置）
	pkgErrors.InitGlobalErrorManager("i18n", i18nPkg.Language)
}

// 会员服务错误码定义
// 错误码格式：SSMMEE (6位数字)，其中 SS=14 表示 membership-service
// 模块划分：
//   01: 套餐模块
//   02: 会员生命周期
//   03: 账本模块
//   04: 佣金模块

// 套餐模块 (140100-140199)
const (
	// ErrCodePlanNotFound 套餐不存在错误
	ErrCodePlanNotFound = 140101
	// ErrCodePlanInactive 套餐已下架错误（仅阻止新购，不影响续费）
	ErrCodePlanInactive = 140102
)

// 会员生命周期模块 (140200-140299)
const (
	// ErrCodeAlreadyActive 用户已有活跃会员错误
	ErrCodeAlreadyActive = 140201
	// ErrCodeNoMembershipToRenew 无会员记录可续费错误
	ErrCodeNoMembershipToRenew = 140202
	// ErrCodeMembershipNotActive 会员未激活错误
	ErrCodeMembershipNotActive = 140203
	// ErrCodeNotAnUpgrade 目标套餐价格不高于当前套餐错误
	ErrCodeNotAnUpgrade = 140204
	// ErrCodeConcurrencyConflict 会员记录版本冲突错误（重试耗尽后返回）
	ErrCodeConcurrencyConflict = 140205
	// ErrCodeCannotCancelStatus 当前状态无法取消会员错误
	ErrCodeCannotCancelStatus = 140206
	// ErrCodeEarningNotAllowed 当前不满足做任务赚取收益的条件错误
	ErrCodeEarningNotAllowed = 140207
)

// 账本模块 (140300-140399)
const (
	// ErrCodeLedgerWriteFailed 账本写入失败错误
	ErrCodeLedgerWriteFailed = 140301
	// ErrCodeLedgerEntryNotFound 账本流水不存在错误
	ErrCodeLedgerEntryNotFound = 140302
)

// 佣金模块 (140400-140499)
const (
	// ErrCodeDistributionFailed 佣金分配失败错误（部分层级未入账）
	ErrCodeDistributionFailed = 140401
)
