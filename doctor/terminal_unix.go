//go:build !windows

package doctor

import (
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
)

var pasteHint = func() string {
	if runtime.GOOS == "darwin" {
		return "grant Accessibility access in System Settings > Privacy & Security"
	}
	return "sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput"
}()

func resetTerminal() {
	exec.Command("stty", "sane").Run()
}

func setupInterruptHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		println("\nInterrupted")
		os.Exit(1)
	}()
}
