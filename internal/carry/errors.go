package carry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRate indicates an annual rate the compounding formula cannot accept (<= -100%).
	ErrInvalidRate = errors.New("carry: invalid rate")
	// ErrInvalidArgument indicates a malformed input such as a negative day count.
	ErrInvalidArgument = errors.New("carry: invalid argument")
	// ErrDegenerateSimulation indicates the simulated exchange rate collapsed to (near) zero.
	ErrDegenerateSimulation = errors.New("carry: degenerate simulation")
)

// Error 携带出错的操作与输入，便于调用方决定跳过还是中止。
type Error struct {
	Kind   error
	Op     string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}
