package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"dictate/audio"
	"dictate/clipboard"
	"dictate/filter"
	"dictate/hotkey"
	"dictate/transcriber"
)

// Options carries what the checks need from the daemon's configuration.
type Options struct {
	ModelPath  string
	ModelReady bool
	Loader     transcriber.Loader
	Device     string
}

const steps = 5

// Run executes interactive diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(opts Options) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("dictate doctor - interactive system diagnostics")
	fmt.Println("===============================================")

	in := bufio.NewReader(os.Stdin)
	checks := []func(*bufio.Reader) bool{
		checkHotkey,
		func(*bufio.Reader) bool { return checkModel(opts) },
		func(r *bufio.Reader) bool { return checkMicAndTranscription(r, opts) },
		func(*bufio.Reader) bool { return checkPasteInit() },
		checkPasteAndRestore,
	}

	allPass := true
	for _, check := range checks {
		if !check(in) {
			allPass = false
			break
		}
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func header(n int, title string) {
	fmt.Println()
	fmt.Printf("[%d/%d] %s\n", n, steps, title)
}

func confirm(in *bufio.Reader, prompt string) bool {
	fmt.Print(prompt + " [y/n]: ")
	answer, _ := in.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

func checkHotkey(*bufio.Reader) bool {
	header(1, "Hotkey detection")

	msg, err := hotkey.Diagnose()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  %s\n", msg)
	fmt.Println("Press Ctrl+Shift+Space...")

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		// swallow the release so it doesn't leak into the next step
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkModel(opts Options) bool {
	header(2, "Speech model")
	if !opts.ModelReady {
		fmt.Printf("  FAIL: model not found at %s\n", opts.ModelPath)
		fmt.Println("  Fix with: dictate model download")
		return false
	}
	fmt.Printf("  PASS: %s\n", opts.ModelPath)
	return true
}

func checkMicAndTranscription(in *bufio.Reader, opts Options) bool {
	header(3, "Microphone and transcription")

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()

	devices, err := actx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}

	var device *audio.DeviceInfo
	if opts.Device != "" {
		device, err = audio.FindDevice(actx, opts.Device)
		if err != nil {
			fmt.Printf("  FAIL: %v\n", err)
			return false
		}
	}
	name := "system default"
	if device != nil {
		name = device.Name
	}
	fmt.Printf("Using device: %s\n", name)
	if audio.IsBluetooth(name) {
		fmt.Println("  Warning: Bluetooth microphones switch the headset to a low quality profile")
	}

	fmt.Print("Press Enter and speak for 3 seconds...")
	in.ReadString('\n')

	engine := audio.NewEngine(actx, audio.EngineConfig{Device: device})
	if err := engine.Start(); err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	fmt.Print("  Recording")
	var peak float32
	for i := 0; i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		peak = max(peak, engine.Level())
		if i%5 == 4 {
			fmt.Print(".")
		}
	}
	samples := engine.Stop()
	fmt.Println(" done")

	if len(samples) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return false
	}
	fmt.Printf("  Captured %.1fs, peak level %.3f\n", float64(len(samples))/audio.TargetRate, peak)
	if peak < 0.01 {
		fmt.Println("  Warning: input is very quiet, check the microphone gain")
	}

	fmt.Println("  Transcribing...")
	eng := transcriber.NewEngine(opts.Loader)
	defer eng.Close()
	res, err := eng.Transcribe(context.Background(), samples, opts.ModelPath)
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}
	fmt.Printf("  load %dms, decode %dms\n", res.LoadDuration.Milliseconds(), res.DecodeDuration.Milliseconds())

	text := filter.Clean(res.Text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("\n  Transcribed text: %s\n\n", text)

	if confirm(bufio.NewReader(os.Stdin), "Is this correct?") {
		fmt.Println("  PASS: transcription verified by user")
		return true
	}
	fmt.Println("  FAIL: transcription not confirmed")
	return false
}

func checkPasteInit() bool {
	header(4, "Paste keystroke")
	if err := clipboard.Init(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		fmt.Printf("  Fix: %s\n", pasteHint)
		return false
	}
	msg, err := clipboard.Verify()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}

func checkPasteAndRestore(*bufio.Reader) bool {
	header(5, "Clipboard delivery")

	board := clipboard.NewSystem()
	const sentinel = "dictate-preserve-check"
	if err := board.WriteText(sentinel); err != nil {
		fmt.Printf("  FAIL: could not set clipboard: %v\n", err)
		return false
	}

	fmt.Println("Focus on a text editor window...")
	for i := 5; i > 0; i-- {
		fmt.Printf("  %d...\n", i)
		time.Sleep(time.Second)
	}

	d := clipboard.NewDelivery(board, clipboard.Keystroke, clipboard.DefaultRestoreDelay)
	d.Deliver("dictate-doctor-test")
	d.Wait()

	resetTerminal()
	fmt.Println()
	if !confirm(bufio.NewReader(os.Stdin), `Did the text "dictate-doctor-test" appear?`) {
		fmt.Println("  FAIL: paste not confirmed")
		return false
	}
	fmt.Println("  PASS: paste verified by user")

	restored, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: could not read clipboard after restore: %v\n", err)
		return false
	}
	if restored != sentinel {
		fmt.Printf("  FAIL: clipboard not preserved (got %q, want %q)\n", restored, sentinel)
		return false
	}
	fmt.Println("  PASS: clipboard preserved")
	return true
}
