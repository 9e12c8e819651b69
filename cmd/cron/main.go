package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/umardraz9/mlmpk-sub002/internal/biz"
	"github.com/umardraz9/mlmpk-sub002/internal/conf"
	"github.com/umardraz9/mlmpk-sub002/internal/constants"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	klog "github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

// CronApp Cron 应用结构
type CronApp struct {
	membershipUsecase *biz.MembershipUsecase
	commissionUsecase *biz.CommissionUsecase
}

// newLogger 创建 logger
func newLogger() klog.Logger {
	return klog.With(klog.NewStdLogger(os.Stdout),
		"ts", klog.DefaultTimestamp,
		"caller", klog.DefaultCaller,
		"service.name", "membership-cron",
	)
}

func main() {
	flag.Parse()

	// 初始化配置
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	expiryCheckDays := constants.DefaultExpiryDays
	reconcileDays := constants.DefaultReconcileDays
	if bc.Membership != nil {
		if bc.Membership.ExpiryCheckDays > 0 {
			expiryCheckDays = bc.Membership.ExpiryCheckDays
		}
		if bc.Membership.ReconcileDays > 0 {
			reconcileDays = bc.Membership.ReconcileDays
		}
	}

	// 初始化应用
	app, cleanup, err := wireApp(&bc)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// 创建定时任务调度器（支持秒级调度）
	cronScheduler := cron.New(cron.WithSeconds())

	// 1. 会员过期检查 - 每天凌晨 2 点执行
	_, err = cronScheduler.AddFunc("0 0 2 * * *", func() {
		log.Println("[CRON] Starting membership expiration sweep...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		count, uids, err := app.membershipUsecase.UpdateExpiredMemberships(ctx)
		if err != nil {
			log.Printf("[CRON] Error updating expired memberships: %v", err)
		} else {
			log.Printf("[CRON] Updated %d expired memberships: %v", count, uids)
			log.Println("[CRON] Finished membership expiration sweep")
		}
	})
	if err != nil {
		log.Printf("Failed to add expiration sweep job: %v", err)
	}

	// 2. 佣金对账回放 - 每天凌晨 3 点执行
	// 重放近期获客交易的佣金分配，补齐分配中途失败的层级（幂等）。
	_, err = cronScheduler.AddFunc("0 0 3 * * *", func() {
		log.Println("[CRON] Starting commission reconciliation...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		replayed, unresolved, err := app.commissionUsecase.ReconcileRecent(ctx, reconcileDays)
		if err != nil {
			log.Printf("[CRON] Error reconciling commissions: %v", err)
		} else {
			log.Printf("[CRON] Commission reconciliation completed: replayed=%d, unresolved=%d", replayed, unresolved)
		}
		log.Println("[CRON] Finished commission reconciliation")
	})
	if err != nil {
		log.Printf("Failed to add commission reconciliation job: %v", err)
	}

	// 3. 到期提醒 - 每天上午 10 点执行
	_, err = cronScheduler.AddFunc("0 0 10 * * *", func() {
		log.Println("[CRON] Starting expiry reminder check...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		notified, err := app.membershipUsecase.NotifyExpiringMemberships(ctx, expiryCheckDays)
		if err != nil {
			log.Printf("[CRON] Error notifying expiring memberships: %v", err)
			return
		}
		log.Printf("[CRON] Sent %d expiry reminders (within %d days)", notified, expiryCheckDays)
		log.Println("[CRON] Finished expiry reminder check")
	})
	if err != nil {
		log.Printf("Failed to add expiry reminder job: %v", err)
	}

	// 启动定时任务
	cronScheduler.Start()
	log.Println("========================================")
	log.Println("Cron jobs started successfully")
	log.Println("Scheduled jobs:")
	log.Println("  - Expiration sweep:          Every day at 02:00")
	log.Println("  - Commission reconciliation: Every day at 03:00")
	log.Println("  - Expiry reminder:           Every day at 10:00")
	log.Println("========================================")

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")

	// 停止定时任务
	ctx := cronScheduler.Stop()
	select {
	case <-ctx.Done():
		log.Println("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		log.Println("Cron jobs forced to stop after timeout")
	}
}
