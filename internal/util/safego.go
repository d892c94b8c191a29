package util

import (
	"runtime/debug"
	"sync"

	"github.com/chukwumela909/project-bolt/internal/logging"
)

// SafeGoGroup runs fn in a goroutine tracked by wg. A panic in fn is logged
// with its stack and does not crash the process; wg is released either way.
func SafeGoGroup(wg *sync.WaitGroup, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.Error("goroutine panic recovered",
					"goroutine", name,
					"panic", r,
					"stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}
