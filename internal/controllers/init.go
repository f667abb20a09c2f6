package controllers

import (
	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/configloader"

	"github.com/google/wire"
)

// ProviderSet exposes controller/handler constructors for DI.
var ProviderSet = wire.NewSet(
	ProvideBaseHandler,
	NewPlaylistHandler,
	NewHealthHandler,
)

// ProvideBaseHandler 以 HTTP 超时作为查询 Handler 的默认超时。
func ProvideBaseHandler(cfg configloader.ServerConfig) *BaseHandler {
	return NewBaseHandler(HandlerTimeouts{Default: cfg.Timeout, Query: cfg.Timeout})
}
