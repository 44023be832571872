//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

// The hotkey event loop has to own the main thread on macOS and Windows.
func main() {
	mainthread.Init(run)
}
