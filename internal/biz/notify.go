package biz

import "context"

// NotificationClient 通知服务客户端接口 (防腐层)
// 所有通知均为 fire-and-forget: 发送失败只记日志，不影响主流程。
type NotificationClient interface {
	Notify(ctx context.Context, userID uint64, kind string, payload map[string]string) error
}
