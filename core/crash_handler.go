package core

import (
	"fmt"
	"os"
	"runtime/debug"
)

// crashCleanup restores the terminal; registered by the UI layer
var crashCleanup func()

// SetCrashCleanup registers the function HandleCrash runs before printing
// A nil function clears the registration
func SetCrashCleanup(fn func()) {
	crashCleanup = fn
}

// HandleCrash is the unified panic handler that resets the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	// Restore terminal to sane state immediately
	if crashCleanup != nil {
		crashCleanup()
	} else {
		emergencyReset(os.Stdout)
	}

	os.Stdout.Sync()
	os.Stderr.Sync()

	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()
	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}

// emergencyReset is the fallback when no cleanup is registered: show the
// cursor, leave the alternate screen, clear attributes
func emergencyReset(f *os.File) {
	f.WriteString("\x1b[?25h\x1b[?1049l\x1b[0m\x1b[?7h")
	f.Sync()
}
