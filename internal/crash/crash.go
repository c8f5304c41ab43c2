// Package crash turns panics on background goroutines into a clean,
// diagnosable process exit.
package crash

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

var (
	mu       sync.Mutex
	cleanups []func()

	// Exit and Output are replaced in tests.
	Exit   = os.Exit
	Output io.Writer = os.Stderr
)

// OnCrash registers a function run before the process exits, e.g. to
// restore the terminal. It returns a function that unregisters it.
func OnCrash(fn func()) func() {
	mu.Lock()
	defer mu.Unlock()
	cleanups = append(cleanups, fn)
	idx := len(cleanups) - 1
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if idx < len(cleanups) {
			cleanups[idx] = nil
		}
	}
}

// Handle prints the panic value and stack, runs the cleanups and exits
// with status 1. A nil value does nothing.
func Handle(r any) {
	if r == nil {
		return
	}
	mu.Lock()
	fns := append([]func(){}, cleanups...)
	mu.Unlock()
	for i := len(fns) - 1; i >= 0; i-- {
		if fns[i] != nil {
			fns[i]()
		}
	}

	os.Stdout.Sync()
	fmt.Fprintf(Output, "\r\nfatal: %v\r\n", r)
	fmt.Fprintf(Output, "stack trace:\r\n%s\r\n", debug.Stack())
	Exit(1)
}

// Go runs fn on a new goroutine; a panic in fn ends the process.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Handle(r)
			}
		}()
		fn()
	}()
}
