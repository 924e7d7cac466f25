package gateway

import (
	"errors"
	"fmt"
)

// Error categories surfaced by the gateway. Match them with errors.Is.
var (
	ErrNotConfigured   = errors.New("gateway: backend not configured")
	ErrDuplicateSecret = errors.New("gateway: secret already in use")
	ErrCreateFailed    = errors.New("gateway: create space failed")
	ErrLookupFailed    = errors.New("gateway: space lookup failed")
	ErrFetchFailed     = errors.New("gateway: fetch posts failed")
	ErrPostFailed      = errors.New("gateway: create post failed")
	ErrLikeFailed      = errors.New("gateway: toggle like failed")
	ErrCommentFailed   = errors.New("gateway: add comment failed")
	ErrEmptyContent    = errors.New("gateway: content is empty")

	// ErrUniqueViolation is wrapped by backends when an insert collides with a
	// uniqueness constraint.
	ErrUniqueViolation = errors.New("gateway: unique constraint violated")
)

// Error ties a category to the operation and the backend error behind it.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Is matches the category.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Detail returns the backend error behind err, if any.
func Detail(err error) string {
	var ge *Error
	if errors.As(err, &ge) && ge.Err != nil {
		return ge.Err.Error()
	}
	return ""
}

// Message is the user-facing text for err. Generic failures carry the
// backend detail for diagnostics.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var msg string
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "请先配置 Supabase 环境变量"
	case errors.Is(err, ErrDuplicateSecret):
		return "这个密码已经被使用了，请换一个密码试试"
	case errors.Is(err, ErrCreateFailed):
		msg = "创建空间失败"
	case errors.Is(err, ErrLookupFailed):
		msg = "登录失败，请检查网络连接后重试"
	case errors.Is(err, ErrFetchFailed):
		msg = "获取帖子失败"
	case errors.Is(err, ErrPostFailed):
		msg = "发布失败"
	case errors.Is(err, ErrLikeFailed):
		msg = "点赞失败"
	case errors.Is(err, ErrCommentFailed):
		msg = "评论失败"
	case errors.Is(err, ErrEmptyContent):
		return "内容不能为空"
	default:
		return err.Error()
	}
	if d := Detail(err); d != "" {
		return msg + ": " + d
	}
	return msg
}
