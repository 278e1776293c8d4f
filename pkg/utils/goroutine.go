package utils

import (
	"context"
	"fmt"
	"runtime/debug"
)

// PanicHandler receives the recovered value and stack of a crashed goroutine.
type PanicHandler func(ctx context.Context, recovered interface{}, stack []byte)

// Go runs fn in a new goroutine. A panic inside fn is recovered and handed to
// the optional handlers instead of taking the process down.
func Go(ctx context.Context, fn func(), handlers ...PanicHandler) {
	go func() {
		defer Recover(ctx, handlers...)
		fn()
	}()
}

// Recover must be deferred directly.
func Recover(ctx context.Context, handlers ...PanicHandler) {
	r := recover()
	if r == nil {
		return
	}
	stack := debug.Stack()
	for _, h := range handlers {
		h(ctx, r, stack)
	}
}

// PanicError turns a recovered value into an error.
func PanicError(recovered interface{}) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", recovered)
}
