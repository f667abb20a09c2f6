// Package repositories 实现数据访问层，封装 sqlc 生成的查询方法。
package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrPlaylistNotFound 表示歌单不存在（由外部歌单管理维护）。
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrStorageConflict 表示可重试的并发冲突（序列化失败、死锁、唯一键冲突、锁超时）。
	ErrStorageConflict = errors.New("storage conflict")
)

// PostgreSQL SQLSTATE codes treated as transient conflicts.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateForeignKeyViolation  = "23503"
)

// wrapStorageError 为错误添加操作上下文，并把冲突类错误归一为 ErrStorageConflict。
func wrapStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsConflict(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrStorageConflict, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateForeignKeyViolation {
		return fmt.Errorf("%s: %w", op, ErrPlaylistNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsConflict 判断 err 是否为可重试的存储冲突。
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStorageConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateUniqueViolation, sqlStateLockNotAvailable:
			return true
		}
	}
	return false
}
