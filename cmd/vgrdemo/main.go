// Command vgrdemo renders a demo scene with vgr and writes it as PNG.
//
// Usage:
//
//	vgrdemo [-config vgr.toml] [-output demo.png] [-backend memory] [-watch] [-v]
//
// With -watch the scene is rendered again whenever the config file changes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/vgr"
	"github.com/gogpu/vgr/backend"
	_ "github.com/gogpu/vgr/backend/memory"
)

// pngWriter is implemented by host-side devices.
type pngWriter interface {
	WritePNG(w io.Writer) error
}

func main() {
	var (
		configPath  = flag.String("config", "", "TOML config file")
		output      = flag.String("output", "demo.png", "output file")
		backendName = flag.String("backend", "", "device backend (default: best available)")
		watch       = flag.Bool("watch", false, "re-render when the config file changes")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "vgrdemo",
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}
	vgr.SetLogger(slog.New(logger))

	run := func() error {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		return render(cfg, *backendName, *output)
	}
	if err := run(); err != nil {
		logger.Fatal("render failed", "err", err)
	}
	logger.Info("saved", "output", *output)

	if !*watch {
		return
	}
	if *configPath == "" {
		logger.Fatal("-watch needs -config")
	}
	if err := watchConfig(*configPath, logger, func() {
		if err := run(); err != nil {
			logger.Error("render failed", "err", err)
			return
		}
		logger.Info("re-rendered", "output", *output)
	}); err != nil {
		logger.Fatal("watch failed", "err", err)
	}
}

func loadConfig(path string) (vgr.Config, error) {
	if path == "" {
		return vgr.DefaultConfig(), nil
	}
	return vgr.LoadConfig(path)
}

func render(cfg vgr.Config, backendName, output string) error {
	var (
		dev vgr.Device
		err error
	)
	if backendName == "" {
		dev, err = backend.Default(cfg)
	} else {
		dev, err = backend.Open(backendName, cfg)
	}
	if err != nil {
		return err
	}
	pw, ok := dev.(pngWriter)
	if !ok {
		return fmt.Errorf("backend %q cannot write images", backendName)
	}

	ctx := vgr.NewContext(dev, vgr.WithConfig(cfg))
	layers, err := buildScene(ctx, cfg.Canvas.Width, cfg.Canvas.Height)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	if err := vgr.RenderAll(ctx, layers...); err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := pw.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// watchConfig calls onChange after every write to path until the watcher
// fails.
func watchConfig(path string, logger *log.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Editors often replace the file on save, which drops a watch on the
	// file itself, so watch its directory instead.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	logger.Info("watching", "config", path)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if configChanged(ev, path) {
				logger.Debug("config changed", "op", ev.Op)
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			return err
		}
	}
}

// configChanged reports whether ev leaves new contents at path.
func configChanged(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(path) {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create) != 0
}
