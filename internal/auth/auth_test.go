package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ctxWith(uid uint64, role Role) context.Context {
	ctx := context.WithValue(context.Background(), UserIDKey, uid)
	return context.WithValue(ctx, UserRoleKey, role)
}

func TestCheckOwnership(t *testing.T) {
	// 未认证
	assert.Error(t, CheckOwnership(context.Background(), 1))

	// 本人访问
	assert.NoError(t, CheckOwnership(ctxWith(1, RoleUser), 1))

	// 越权访问他人资源
	assert.Error(t, CheckOwnership(ctxWith(1, RoleUser), 2))

	// 管理员可以访问所有资源
	assert.NoError(t, CheckOwnership(ctxWith(99, RoleAdmin), 2))
}

func TestIsAdmin(t *testing.T) {
	assert.False(t, IsAdmin(context.Background()))
	assert.False(t, IsAdmin(ctxWith(1, RoleUser)))
	assert.True(t, IsAdmin(ctxWith(1, RoleAdmin)))
}
