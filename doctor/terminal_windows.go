//go:build windows

package doctor

import (
	"os"
	"os/signal"
)

const pasteHint = "run dictate from an unelevated session with keyboard access"

func resetTerminal() {}

func setupInterruptHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		println("\nInterrupted")
		os.Exit(1)
	}()
}
