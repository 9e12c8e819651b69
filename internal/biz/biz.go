package biz

import (
	"context"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewMembershipUsecase, NewCommissionUsecase)

// Transaction 数据层事务接口
type Transaction interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}
