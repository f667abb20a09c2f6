package services

import (
	"github.com/go-kratos/kratos/v2/errors"
)

// 错误原因，作为 Kratos error reason 暴露给调用方与监控。
const (
	ReasonPlaylistNotFound       = "PLAYLIST_NOT_FOUND"
	ReasonInvalidArgument        = "INVALID_ARGUMENT"
	ReasonViewStorageConflict    = "VIEW_STORAGE_CONFLICT"
	ReasonViewStorageUnavailable = "VIEW_STORAGE_UNAVAILABLE"
	ReasonQueryTimeout           = "VIEW_QUERY_TIMEOUT"
)

// ErrPlaylistNotFound 歌单不存在。
var ErrPlaylistNotFound = errors.NotFound(ReasonPlaylistNotFound, "playlist not found")

// ErrViewStorageConflict 重试后仍发生并发冲突。
var ErrViewStorageConflict = errors.Conflict(ReasonViewStorageConflict, "view storage conflict")

// ErrViewStorageUnavailable 存储不可用。
var ErrViewStorageUnavailable = errors.ServiceUnavailable(ReasonViewStorageUnavailable, "view storage unavailable")

// ErrQueryTimeout 查询超时。
var ErrQueryTimeout = errors.GatewayTimeout(ReasonQueryTimeout, "query timeout")

func errInvalidArgument(msg string) *errors.Error {
	return errors.BadRequest(ReasonInvalidArgument, msg)
}
