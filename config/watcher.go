// Copyright (C) 2026 Tau Protocol Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"context"
	"sync"
	"time"

	"code.tauprotocol.io/tau/logging"

	"github.com/fsnotify/fsnotify"
)

const namedLogger = "cfgwatcher"

// Watcher watches the config file and notifies the registered
// listeners when it changes on disk.
type Watcher struct {
	log  *logging.Logger
	home string

	mu                 sync.Mutex
	cfg                Config
	cfgUpdateListeners []func(Config)
}

// NewWatcher loads the config under home and starts watching it until
// ctx is cancelled. Listeners registered with OnConfigUpdate run on
// the watch goroutine after every successful reload.
func NewWatcher(ctx context.Context, log *logging.Logger, home string) (*Watcher, error) {
	log = log.Named(namedLogger)
	// always notify for config changes, whatever the configured level
	log.SetLevel(logging.DebugLevel)

	w := &Watcher{
		log:  log,
		home: home,
	}
	if err := w.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(FilePath(home)); err != nil {
		watcher.Close()
		return nil, err
	}

	w.log.Info("config watcher started",
		logging.String("config", FilePath(home)))
	go w.watch(ctx, watcher)

	return w, nil
}

// Get returns the current configuration.
func (w *Watcher) Get() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// OnConfigUpdate registers functions called after each reload.
func (w *Watcher) OnConfigUpdate(fns ...func(Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfgUpdateListeners = append(w.cfgUpdateListeners, fns...)
}

func (w *Watcher) load() error {
	cfg, err := Read(w.home)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.cfg = *cfg
	w.mu.Unlock()
	return nil
}

func (w *Watcher) notify() {
	w.mu.Lock()
	cfg := w.cfg
	listeners := make([]func(Config), len(w.cfgUpdateListeners))
	copy(listeners, w.cfgUpdateListeners)
	w.mu.Unlock()
	for _, f := range listeners {
		f(cfg)
	}
}

func (w *Watcher) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Rename != 0 {
				// editors that write a temp file and rename it over the
				// config need a beat before the new file is readable
				time.Sleep(50 * time.Millisecond)
			}
			w.log.Info("configuration updated",
				logging.String("event", event.Name))
			if err := w.load(); err != nil {
				w.log.Error("unable to reload configuration",
					logging.Error(err))
				continue
			}
			w.notify()
		case err := <-watcher.Errors:
			w.log.Error("config watcher received error event",
				logging.Error(err))
		case <-ctx.Done():
			return
		}
	}
}
