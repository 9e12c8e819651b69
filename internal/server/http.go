package server

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strconv"

	"github.com/gaoyong06/go-pkg/health"
	"github.com/gaoyong06/go-pkg/middleware/i18n"

	"github.com/umardraz9/mlmpk-sub002/internal/auth"
	"github.com/umardraz9/mlmpk-sub002/internal/conf"
	"github.com/umardraz9/mlmpk-sub002/internal/constants"
	"github.com/umardraz9/mlmpk-sub002/internal/service"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Bootstrap, svc *service.MembershipService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			// 从网关注入的请求头提取用户身份
			identity(),
			// 添加 i18n 中间件
			i18n.Middleware(),
		),
		http.ErrorEncoder(customErrorEncoder),
	}
	if c.Server.Http.Addr != "" {
		opts = append(opts, http.Address(c.Server.Http.Addr))
	}
	srv := http.NewServer(opts...)

	// 注册业务路由
	registerRoutes(srv, svc)

	// 注册健康检查端点
	srv.Route("/").GET("/health", func(ctx http.Context) error {
		return ctx.Result(200, health.NewResponse("membership-service"))
	})

	return srv
}

// identity 身份中间件
// 网关完成认证后通过 X-User-Id / X-User-Role 请求头传递用户身份。
func identity() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if tr, ok := transport.FromServerContext(ctx); ok {
				if raw := tr.RequestHeader().Get("X-User-Id"); raw != "" {
					if uid, err := strconv.ParseUint(raw, 10, 64); err == nil {
						ctx = context.WithValue(ctx, auth.UserIDKey, uid)
					}
				}
				if role := tr.RequestHeader().Get("X-User-Role"); role != "" {
					ctx = context.WithValue(ctx, auth.UserRoleKey, auth.Role(role))
				}
			}
			return handler(ctx, req)
		}
	}
}

func registerRoutes(srv *http.Server, svc *service.MembershipService) {
	r := srv.Route("/v1")

	r.GET("/plans", func(ctx http.Context) error {
		reply, err := svc.ListPlans(ctx)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/plans/{name}", func(ctx http.Context) error {
		reply, err := svc.GetPlan(ctx, ctx.Vars().Get("name"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/memberships/{uid}", func(ctx http.Context) error {
		uid, err := pathUID(ctx)
		if err != nil {
			return err
		}
		reply, err := svc.GetMyMembership(ctx, uid)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/memberships/purchase", func(ctx http.Context) error {
		var req service.PurchaseRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.PurchaseMembership(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/memberships/renew", func(ctx http.Context) error {
		var req service.RenewRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.RenewMembership(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/memberships/upgrade", func(ctx http.Context) error {
		var req service.UpgradeRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.UpgradeMembership(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/memberships/cancel", func(ctx http.Context) error {
		var req service.CancelRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		if err := svc.CancelMembership(ctx, &req); err != nil {
			return err
		}
		return ctx.Result(200, map[string]interface{}{"success": true})
	})

	r.GET("/memberships/{uid}/can-earn-today", func(ctx http.Context) error {
		uid, err := pathUID(ctx)
		if err != nil {
			return err
		}
		reply, err := svc.CanEarnToday(ctx, uid)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/memberships/tasks/complete", func(ctx http.Context) error {
		var req service.CompleteTaskRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.CompleteDailyTask(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/memberships/extend", func(ctx http.Context) error {
		var req service.ExtendRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.ExtendEarningWindow(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/memberships/{uid}/history", func(ctx http.Context) error {
		uid, err := pathUID(ctx)
		if err != nil {
			return err
		}
		page := queryInt(ctx, "page", 1)
		pageSize := queryInt(ctx, "page_size", constants.DefaultPageSize)
		reply, err := svc.GetMembershipHistory(ctx, uid, page, pageSize)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/commissions/redistribute", func(ctx http.Context) error {
		var req service.RedistributeRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		if err := svc.RedistributeCommission(ctx, &req); err != nil {
			return err
		}
		return ctx.Result(200, map[string]interface{}{"success": true})
	})
}

func pathUID(ctx http.Context) (uint64, error) {
	uid, err := strconv.ParseUint(ctx.Vars().Get("uid"), 10, 64)
	if err != nil {
		return 0, kerrors.BadRequest("INVALID_UID", "invalid uid")
	}
	return uid, nil
}

func queryInt(ctx http.Context, key string, def int) int {
	raw := ctx.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func customErrorEncoder(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	se := kerrors.FromError(err)
	status := stdhttp.StatusInternalServerError
	response := map[string]interface{}{
		"code":    status,
		"message": "internal server error",
	}

	if se != nil {
		status = mapErrorStatus(int(se.Code))
		response["code"] = se.Code
		response["reason"] = se.Reason
		response["message"] = se.Message
		if len(se.Metadata) > 0 {
			response["metadata"] = se.Metadata
		}
	} else if err != nil {
		response["message"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func mapErrorStatus(code int) int {
	if code >= 100 && code < 600 {
		return code
	}
	if code >= 140000 && code < 150000 {
		return stdhttp.StatusBadRequest
	}
	return stdhttp.StatusInternalServerError
}
