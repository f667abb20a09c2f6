package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-playlist/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"
)

const (
	// OperationGetPlaylist 是歌单详情接口的 operation 名称，用于中间件匹配。
	OperationGetPlaylist = "/playlist.v1.PlaylistService/GetPlaylist"
	// OperationRankPlaylists 是歌单排序接口的 operation 名称。
	OperationRankPlaylists = "/playlist.v1.PlaylistService/RankPlaylists"

	reasonPlaylistIDInvalid = "PLAYLIST_ID_INVALID"
	reasonRankInvalid       = "RANK_REQUEST_INVALID"
)

// PlaylistHandler 负责歌单详情与排序的 HTTP 接口。
type PlaylistHandler struct {
	*BaseHandler
	svc *services.PlaylistViewService
	log *log.Helper
}

// NewPlaylistHandler 构造歌单 Handler。
func NewPlaylistHandler(svc *services.PlaylistViewService, base *BaseHandler, logger log.Logger) *PlaylistHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &PlaylistHandler{BaseHandler: base, svc: svc, log: log.NewHelper(logger)}
}

// RegisterRoutes 挂载路由。
func (h *PlaylistHandler) RegisterRoutes(srv *khttp.Server) {
	r := srv.Route("/")
	r.GET("/api/v1/playlists/{playlist_id}", h.getPlaylistHTTP)
	r.POST("/api/v1/playlists:rank", h.rankPlaylistsHTTP)
}

func (h *PlaylistHandler) getPlaylistHTTP(ctx khttp.Context) error {
	in := &dto.GetPlaylistRequest{PlaylistID: ctx.Vars().Get("playlist_id")}
	khttp.SetOperation(ctx, OperationGetPlaylist)
	mw := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		return h.GetPlaylist(c, req.(*dto.GetPlaylistRequest))
	})
	out, err := mw(ctx, in)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, out)
}

func (h *PlaylistHandler) rankPlaylistsHTTP(ctx khttp.Context) error {
	var in dto.RankPlaylistsRequest
	if err := ctx.Bind(&in); err != nil {
		return errors.BadRequest(reasonRankInvalid, err.Error())
	}
	khttp.SetOperation(ctx, OperationRankPlaylists)
	mw := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		return h.RankPlaylists(c, req.(*dto.RankPlaylistsRequest))
	})
	out, err := mw(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, out)
}

// GetPlaylist 返回歌单统计，并为请求头中的用户异步登记一次浏览。
// 浏览登记的结果（包括限流与失败）不影响响应。
func (h *PlaylistHandler) GetPlaylist(ctx context.Context, req *dto.GetPlaylistRequest) (*dto.PlaylistResponse, error) {
	playlistID, err := dto.ParsePlaylistID(req.PlaylistID)
	if err != nil {
		return nil, errors.BadRequest(reasonPlaylistIDInvalid, err.Error())
	}

	meta := h.ExtractMetadata(ctx)
	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()
	timeoutCtx = InjectHandlerMetadata(timeoutCtx, meta)

	stats, err := h.svc.GetStats(timeoutCtx, playlistID)
	if err != nil {
		return nil, err
	}

	userID, err := dto.ParseUserID(meta.UserID)
	if err != nil {
		h.log.WithContext(ctx).Debugf("skip view registration: %v", err)
	} else if userID != uuid.Nil {
		h.svc.RegisterView(InjectHandlerMetadata(ctx, meta), playlistID, userID, time.Now())
	}
	return dto.NewPlaylistResponse(stats), nil
}

// RankPlaylists 按请求模式排序歌单摘要。
func (h *PlaylistHandler) RankPlaylists(ctx context.Context, req *dto.RankPlaylistsRequest) (*dto.RankPlaylistsResponse, error) {
	mode, err := services.ParseRankMode(req.Mode)
	if err != nil {
		return nil, errors.BadRequest(reasonRankInvalid, err.Error())
	}
	briefs, err := req.ToBriefs()
	if err != nil {
		return nil, errors.BadRequest(reasonRankInvalid, err.Error())
	}
	at, err := req.ParseAt()
	if err != nil {
		return nil, errors.BadRequest(reasonRankInvalid, err.Error())
	}

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	ranked, err := h.svc.RankCollections(timeoutCtx, briefs, mode, at)
	if err != nil {
		return nil, err
	}
	return dto.NewRankPlaylistsResponse(mode.String(), ranked), nil
}
