package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dictate/audio"
	"dictate/beep"
	"dictate/clipboard"
	"dictate/config"
	"dictate/doctor"
	"dictate/hotkey"
	"dictate/log"
	"dictate/metrics"
	"dictate/permission"
	"dictate/session"
	"dictate/shutdown"
	"dictate/transcriber"
)

var version = "dev"

const bgEnv = "_DICTATE_BG"

func run() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "model", "history", "login":
			os.Exit(runCommand(os.Args[1], os.Args[2:]))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	deviceFlag := flag.String("device", cfg.Device, "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	hybridFlag := flag.Bool("hybrid", false, "Enable hybrid tap+hold recording mode")
	longPressFlag := flag.Duration("longpress", 350*time.Millisecond, "Long-press threshold for PTT vs tap (e.g., 350ms)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	metricsFlag := flag.String("metrics", cfg.MetricsAddr, "Serve Prometheus metrics on this address (e.g., localhost:9464)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	testFlag := flag.String("test", "", "Test mode: headless, stdin-driven, capturing from the given WAV file")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	modelFlag := flag.String("model", cfg.ModelPath, "Path to a ggml speech model")
	nobeepFlag := flag.Bool("nobeep", !cfg.Beep, "Disable audible cues")
	flag.Parse()

	cfg.Device = *deviceFlag
	cfg.ModelPath = *modelFlag
	cfg.MetricsAddr = *metricsFlag
	cfg.Beep = !*nobeepFlag

	if *versionFlag {
		fmt.Printf("dictate %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	models := newModels(cfg)

	if *doctorFlag {
		path, ready := models.Location()
		os.Exit(doctor.Run(doctor.Options{
			ModelPath:  path,
			ModelReady: ready,
			Loader:     transcriber.NewWhisperLoader(whisperConfig(cfg)),
			Device:     cfg.Device,
		}))
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *testFlag != "" {
		if err := initLog(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
		}
		serveMetrics(cfg.MetricsAddr)
		os.Exit(runTestMode(*testFlag, cfg))
	}

	// resolve -setup before daemonizing, the picker needs the terminal
	if *setupFlag && cfg.Device == "" {
		actx, err := audio.NewContext()
		if err != nil {
			fmt.Printf("Error initializing audio: %v\n", err)
			os.Exit(1)
		}
		if dev, err := audio.SelectDevice(actx, ""); err != nil {
			fmt.Printf("Warning: device selection failed: %v\n", err)
		} else if dev != nil {
			cfg.Device = dev.Name
		}
		actx.Close()
	}

	if _, err := models.Require(); err != nil {
		fmt.Printf("Speech %v\n", err)
		fmt.Println("Download it with: dictate model download")
	}

	// without the TUI, re-exec in the background and give the shell back
	if !*tuiFlag && os.Getenv(bgEnv) == "" {
		args := os.Args[1:]
		if cfg.Device != "" {
			args = append(args, "-device", cfg.Device)
		}
		exe, _ := os.Executable()
		cmd := exec.Command(exe, args...)
		cmd.Env = append(os.Environ(), bgEnv+"=1")
		devnull, _ := os.Open(os.DevNull)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = devnull, devnull, devnull
		if err := cmd.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("dictate running in background (pid %d)\n", cmd.Process.Pid)
		os.Exit(0)
	}

	if err := initLog(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()
	serveMetrics(cfg.MetricsAddr)

	if err := runDaemon(cfg, *hybridFlag, *longPressFlag, *tuiFlag); err != nil {
		log.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Close()
		os.Exit(1)
	}
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func initLog(cfg *config.Config) error {
	if err := log.Init(); err != nil {
		return err
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		log.Warnf("%v, keeping info", err)
	}
	return nil
}

func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		log.Infof("metrics listening on http://%s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
}

func whisperConfig(cfg *config.Config) transcriber.WhisperConfig {
	return transcriber.WhisperConfig{Threads: cfg.Threads, Language: cfg.Language}
}

func runDaemon(cfg *config.Config, hybrid bool, longPress time.Duration, withTUI bool) error {
	if !cfg.Beep {
		beep.Disable()
	}

	actx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}
	defer actx.Close()

	var device *audio.DeviceInfo
	if cfg.Device != "" {
		device, err = audio.FindDevice(actx, cfg.Device)
		if err != nil {
			log.Warnf("%v, using system default", err)
			device = nil
		}
	}

	perms := &permission.System{
		CaptureDevices: func() (int, error) {
			devices, err := actx.Devices()
			return len(devices), err
		},
		PasteInit: clipboard.Init,
		Out:       os.Stderr,
	}

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		return fmt.Errorf("registering hotkey: %w", err)
	}
	defer hk.Unregister()

	mode := "toggle"
	var isToggle func() bool
	var hy *hotkey.Hybrid
	if hybrid {
		mode = "hybrid"
		hy = hotkey.NewHybrid(hk, longPress)
		isToggle = hy.IsToggle
	}

	p := newPipeline(pipelineConfig{
		cfg:      cfg,
		audio:    actx,
		device:   device,
		models:   newModels(cfg),
		loader:   transcriber.NewWhisperLoader(whisperConfig(cfg)),
		board:    clipboard.NewSystem(),
		perms:    perms,
		isToggle: isToggle,
	})
	defer p.close()

	log.SessionStart(p.modelPath(), mode, deviceName(device))

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	p.ctl.Subscribe(newCues())
	p.ctl.Subscribe(cancelGate(hk))

	var prog *tea.Program
	if withTUI {
		devices := make(chan struct{}, 1)
		prog = newTUIProgram(tuiModel{
			device:       deviceName(device),
			hybrid:       hybrid,
			selectDevice: devices,
		})
		p.ctl.Subscribe(session.ObserverFunc(func(s session.Status) { prog.Send(StatusMsg{Status: s}) }))
		go func() {
			if _, err := prog.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
			stop()
		}()
		go handleDeviceSelect(ctx, prog, actx, p.engine, devices)
		prog.Send(StatusMsg{Status: p.ctl.Status()})
	}

	if hy != nil {
		go driveHybrid(ctx, hy, p.ctl)
	} else {
		go driveToggle(ctx, hotkey.NewToggle(hk), p.ctl)
	}

	p.ctl.Run(ctx)
	if prog != nil {
		prog.Quit()
	}
	p.ctl.Wait()
	log.SessionEnd(p.delivered())
	return nil
}

func deviceName(d *audio.DeviceInfo) string {
	if d == nil {
		return "system default"
	}
	return d.Name
}

// handleDeviceSelect runs the raw-mode device picker when the TUI asks for
// it. The new device takes effect on the next recording.
func handleDeviceSelect(ctx context.Context, prog *tea.Program, actx audio.Context, engine *audio.Engine, req <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-req:
		}
		prog.ReleaseTerminal()
		dev, err := audio.SelectDevice(actx, engine.DeviceName())
		prog.RestoreTerminal()
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			continue
		}
		if dev == nil {
			continue
		}
		log.Info("device_switch: " + dev.Name)
		engine.SetDevice(dev)
		prog.Send(DeviceMsg{Name: dev.Name})
	}
}
