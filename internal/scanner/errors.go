package scanner

import (
	"context"
	"errors"

	"github.com/scan-io-git/hposcan/internal/compat"
	"github.com/scan-io-git/hposcan/internal/rules"
	"github.com/scan-io-git/hposcan/internal/walker"
)

var (
	ErrTargetNotFound   = errors.New("target not found")
	ErrTargetUnreadable = errors.New("target is not a readable directory")
	// ErrFileUnreadable is logged per file and never aborts a scan.
	ErrFileUnreadable = errors.New("file unreadable")
)

// Stable error codes reported to callers.
const (
	CodeTargetNotFound          = "target_not_found"
	CodeTargetUnreadable        = "target_unreadable"
	CodeDirectoryUnreadable     = "directory_unreadable"
	CodeFileUnreadable          = "file_unreadable"
	CodeRuleEngineMisconfigured = "rule_engine_misconfigured"
	CodeCacheUnavailable        = "cache_unavailable"
	CodeCanceled                = "canceled"
	CodeInternal                = "internal_error"
)

// ErrorCode maps err to its stable code. A nil error maps to "".
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTargetNotFound):
		return CodeTargetNotFound
	case errors.Is(err, ErrTargetUnreadable):
		return CodeTargetUnreadable
	case errors.Is(err, walker.ErrDirectoryUnreadable):
		return CodeDirectoryUnreadable
	case errors.Is(err, ErrFileUnreadable):
		return CodeFileUnreadable
	case errors.Is(err, rules.ErrRuleEngineMisconfigured):
		return CodeRuleEngineMisconfigured
	case errors.Is(err, compat.ErrCacheUnavailable):
		return CodeCacheUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeInternal
	}
}
