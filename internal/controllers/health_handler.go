package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/services"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

const readinessTimeout = 2 * time.Second

// HealthHandler 提供存活与就绪探针。
type HealthHandler struct {
	svc *services.PlaylistViewService
}

// NewHealthHandler 构造探针 Handler。
func NewHealthHandler(svc *services.PlaylistViewService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// RegisterRoutes 挂载 /healthz 与 /readyz。
func (h *HealthHandler) RegisterRoutes(srv *khttp.Server) {
	r := srv.Route("/")
	r.GET("/healthz", func(ctx khttp.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	r.GET("/readyz", func(ctx khttp.Context) error {
		if err := h.Ready(ctx); err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})
}

// Ready 在超时内检查存储连通性。
func (h *HealthHandler) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return h.svc.Ready(ctx)
}
