package data

import (
	"context"
	"encoding/json"
	"time"

	"github.com/umardraz9/mlmpk-sub002/internal/biz"
	"github.com/umardraz9/mlmpk-sub002/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// notificationClient 通知服务客户端 (防腐层)
// 通知事件发布到 Redis 频道，由 notification-service 消费后投递。
// 发布失败由调用方记日志，不会影响业务主流程。
type notificationClient struct {
	rdb *redis.Client
	log *log.Helper
}

// NewNotificationClient 创建通知客户端
func NewNotificationClient(rdb *redis.Client, logger log.Logger) biz.NotificationClient {
	return &notificationClient{
		rdb: rdb,
		log: log.NewHelper(logger),
	}
}

// notificationEvent 通知事件载荷
type notificationEvent struct {
	EventID   string            `json:"event_id"`
	UserID    uint64            `json:"user_id"`
	Kind      string            `json:"kind"`
	Payload   map[string]string `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Notify 发布一条通知事件
func (c *notificationClient) Notify(ctx context.Context, userID uint64, kind string, payload map[string]string) error {
	event := notificationEvent{
		EventID:   uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := c.rdb.Publish(ctx, constants.NotificationChannel, raw).Err(); err != nil {
		c.log.Warnf("Failed to publish notification for user %d (%s): %v", userID, kind, err)
		return err
	}
	return nil
}
