package main

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"dictate/audio"
	"dictate/clipboard"
	"dictate/config"
	"dictate/encoder"
	"dictate/history"
	"dictate/log"
	"dictate/model"
	"dictate/permission"
	"dictate/session"
	"dictate/transcriber"
)

type pipelineConfig struct {
	cfg      *config.Config
	audio    audio.Context
	device   *audio.DeviceInfo
	models   session.Models
	loader   transcriber.Loader
	board    clipboard.Board
	paster   clipboard.Paster
	perms    permission.Provider
	isToggle func() bool

	// history is opened from cfg.HistoryDir when nil
	history *history.Store
}

// pipeline is everything behind the controller: capture, inference,
// delivery and persistence.
type pipeline struct {
	ctl      *session.Controller
	engine   *audio.Engine
	trans    *transcriber.Engine
	delivery *clipboard.Delivery
	history  *history.Store
	models   session.Models
	count    *countingDeliverer
}

func newPipeline(pc pipelineConfig) *pipeline {
	cfg := pc.cfg
	engine := audio.NewEngine(pc.audio, audio.EngineConfig{
		Device:        pc.device,
		LevelInterval: cfg.LevelInterval,
		LevelWindow:   cfg.LevelWindow,
	})
	trans := transcriber.NewEngine(pc.loader)

	paster := pc.paster
	if paster == nil {
		paster = clipboard.Keystroke
	}
	delivery := clipboard.NewDelivery(pc.board, paster, cfg.RestoreDelay)
	count := &countingDeliverer{next: delivery}

	store := pc.history
	if store == nil {
		var err error
		store, err = history.Open(historyDir(cfg))
		if err != nil {
			// another instance holds the lock; keep dictating without history
			log.Warnf("history disabled: %v", err)
			store = nil
		}
	}

	deps := session.Deps{
		Recorder:    engine,
		Transcriber: trans,
		Deliverer:   count,
		Permissions: pc.perms,
		Models:      pc.models,
	}
	if store != nil {
		deps.History = store
	}
	if cfg.ArchiveDir != "" {
		deps.Archiver = encoder.NewArchive(cfg.ArchiveDir)
	}

	ctl := session.New(deps, session.Options{
		PermissionTimeout: cfg.PermissionTimeout,
		CancelDisplay:     cfg.CancelDisplay,
		LevelInterval:     cfg.LevelInterval,
		SilenceAutoStop:   cfg.SilenceAutoStop,
		IsToggle:          pc.isToggle,
	})

	return &pipeline{
		ctl:      ctl,
		engine:   engine,
		trans:    trans,
		delivery: delivery,
		history:  store,
		models:   pc.models,
		count:    count,
	}
}

func (p *pipeline) modelPath() string {
	path, _ := p.models.Location()
	return path
}

func (p *pipeline) delivered() int { return int(p.count.n.Load()) }

// close waits for pending clipboard restores, then releases the model and
// the history store.
func (p *pipeline) close() {
	p.delivery.Wait()
	p.engine.Stop()
	p.trans.Close()
	if p.history != nil {
		if err := p.history.Close(); err != nil {
			log.Warnf("history close: %v", err)
		}
	}
}

type countingDeliverer struct {
	next session.Deliverer
	n    atomic.Int64
}

func (d *countingDeliverer) Deliver(text string) {
	d.n.Add(1)
	d.next.Deliver(text)
}

func newModels(cfg *config.Config) *model.Manager {
	m := model.New(cfg.ModelDir)
	if cfg.ModelPath != "" {
		m.File = cfg.ModelPath
		if !filepath.IsAbs(m.File) {
			if abs, err := filepath.Abs(m.File); err == nil {
				m.File = abs
			}
		}
	}
	m.URL = cfg.ModelURL
	m.SHA256 = cfg.ModelSHA256
	return m
}

func historyDir(cfg *config.Config) string {
	if cfg.HistoryDir != "" {
		return cfg.HistoryDir
	}
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "dictate", "history")
	}
	return filepath.Join(os.TempDir(), "dictate", "history")
}
