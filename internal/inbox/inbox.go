// Package inbox converts CRM exports dropped into a directory. A Sweeper
// converts each new or modified export once; Watch and Schedule trigger
// sweeps from filesystem events or a cron expression.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

// DefaultDebounce is how long Watch waits after the last event before
// sweeping. CRM downloads arrive as several writes.
const DefaultDebounce = 500 * time.Millisecond

// ConvertFunc converts the export at path and returns the written path.
type ConvertFunc func(ctx context.Context, path string) (string, error)

// Sweeper converts eligible files in Dir. Sweeps never overlap.
type Sweeper struct {
	Dir        string
	OutputName string // files whose name ends with it are outputs and never ingested
	Convert    ConvertFunc
	Debounce   time.Duration
	Logger     *slog.Logger

	mu   sync.Mutex
	seen map[string]time.Time
}

func (s *Sweeper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// eligible reports whether name looks like an export this sweeper should
// convert.
func (s *Sweeper) eligible(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	lower := strings.ToLower(base)
	if s.OutputName != "" {
		stem := stemOf(lower)
		out := stemOf(strings.ToLower(s.OutputName))
		if stem == out || strings.HasSuffix(stem, "_"+out) {
			return false
		}
	}
	switch filepath.Ext(lower) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// Sweep converts every eligible file not yet converted at its current
// modification time. It returns the number converted and the joined
// conversion errors. A file that failed is retried only once modified.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Convert == nil {
		return 0, errors.New("inbox: no converter configured")
	}
	if s.seen == nil {
		s.seen = make(map[string]time.Time)
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, fmt.Errorf("read inbox: %w", err)
	}

	log := s.logger().With("dir", s.Dir)
	var errs []error
	converted := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return converted, err
		}
		if e.IsDir() || !s.eligible(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(s.Dir, e.Name())
		if mod, ok := s.seen[path]; ok && mod.Equal(info.ModTime()) {
			continue
		}
		s.seen[path] = info.ModTime()

		out, err := s.Convert(ctx, path)
		if err != nil {
			log.Warn("inbox conversion failed", "file", e.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		converted++
		log.Info("inbox file converted", "file", e.Name(), "output", out)
	}
	return converted, errors.Join(errs...)
}

// Watch sweeps once, then again after every burst of create or write
// events in Dir. It returns when ctx is done.
func (s *Sweeper) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.Dir, err)
	}

	log := s.logger().With("dir", s.Dir)
	log.Info("watching inbox")
	s.sweepAndLog(ctx)

	debounce := s.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !s.eligible(event.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			s.sweepAndLog(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("inbox watcher error", "error", err)
		}
	}
}

// Schedule sweeps on the cron expression until ctx is done, then waits
// for a running sweep to finish.
func (s *Sweeper) Schedule(ctx context.Context, expr string) error {
	c := cron.New()
	if _, err := c.AddFunc(expr, func() { s.sweepAndLog(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	s.logger().Info("inbox schedule started", "dir", s.Dir, "schedule", expr)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (s *Sweeper) sweepAndLog(ctx context.Context) {
	n, err := s.Sweep(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger().Warn("inbox sweep finished with errors", "dir", s.Dir, "converted", n, "error", err)
		return
	}
	if n > 0 {
		s.logger().Info("inbox sweep finished", "dir", s.Dir, "converted", n)
	}
}
