// Package goroutine provides panic-safe wrappers for background work.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

// SafeGo launches fn in a goroutine; a panic is logged with its stack instead of crashing the process.
func SafeGo(log logger.Interface, name string, fn func()) {
	go Run(log, name, fn)
}

// Run executes fn synchronously with the same panic guard as SafeGo.
// Cron jobs use it so one failing run does not take down the worker.
func Run(log logger.Interface, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("background task panicked",
				"task", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
