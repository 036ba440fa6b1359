package tail

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
)

// EventKind discriminates MultiWatcher events.
type EventKind int

const (
	EventAction EventKind = iota
	EventAgentAdded
)

// Event is one item yielded by MultiWatcher, fanned in from all tailed
// files. Grounded on original_source/parser/watcher.py's MultiLogWatcher,
// which yields ("action", ...) / ("agent_added", ...) tuples from a single
// asyncio queue; here the fan-in happens over a Go channel instead.
type Event struct {
	Kind    EventKind
	Path    string
	Actions []logformat.Action
}

// ProcessMeta is the subset of discovery.AgentProcess a MultiWatcher needs
// to attribute log files to processes and detect when a process stops.
type ProcessMeta struct {
	PID     int
	LogFile string
	Stopped bool
}

const StoppedSentinel = "(stopped)"

// MultiWatcher watches either a set of directories (scanning for *.jsonl
// recursively) or a fixed set of process-attributed log files, fanning
// every tailed file's Updates into one Event channel.
type MultiWatcher struct {
	dirs         []string
	pollInterval time.Duration

	processMode bool
	processMeta map[string]ProcessMeta // log file -> owning process

	mu      sync.Mutex
	active  map[string]*SessionTailer
	events  chan Event

	cancel context.CancelFunc
}

// NewDirectoryWatcher scans dirs for *.jsonl files (recursively) and
// tails every one found, picking up new files as they appear.
func NewDirectoryWatcher(dirs []string, pollInterval time.Duration) *MultiWatcher {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &MultiWatcher{
		dirs:         dirs,
		pollInterval: pollInterval,
		active:       make(map[string]*SessionTailer),
		events:       make(chan Event, 32),
	}
}

// NewProcessWatcher tails only the log files belonging to the given
// processes, rather than scanning directories.
func NewProcessWatcher(procs []ProcessMeta, pollInterval time.Duration) *MultiWatcher {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	meta := make(map[string]ProcessMeta, len(procs))
	for _, p := range procs {
		if p.LogFile != "" {
			meta[p.LogFile] = p
		}
	}
	return &MultiWatcher{
		processMode:  true,
		processMeta:  meta,
		pollInterval: pollInterval,
		active:       make(map[string]*SessionTailer),
		events:       make(chan Event, 32),
	}
}

// RefreshProcesses replaces the process metadata and sets Stopped on the
// entry of every process missing from procs (its tailer keeps running —
// a stopped agent's log file can still be read, it just won't grow — and
// discoverFiles skips stopped entries). It does not write StoppedSentinel
// into any field and starts no tailers itself; log files of new
// processes are picked up on Run's next poll.
func (w *MultiWatcher) RefreshProcesses(procs []ProcessMeta) {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := make(map[string]bool, len(procs))
	for _, p := range procs {
		if p.LogFile == "" {
			continue
		}
		current[p.LogFile] = true
		w.processMeta[p.LogFile] = p
	}
	for path, meta := range w.processMeta {
		if !current[path] {
			meta.Stopped = true
			w.processMeta[path] = meta
		}
	}
}

// Events returns the channel of fanned-in events.
func (w *MultiWatcher) Events() <-chan Event { return w.events }

// Run discovers files, starts a tailer goroutine per file via an
// errgroup, and polls for newly appearing files at pollInterval until ctx
// is cancelled.
func (w *MultiWatcher) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	defer close(w.events)

	g, ctx := errgroup.WithContext(ctx)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		for _, path := range w.discoverFiles() {
			if _, exists := w.active[path]; exists {
				continue
			}
			tailer := NewSessionTailer(path)
			w.mu.Lock()
			w.active[path] = tailer
			w.mu.Unlock()

			select {
			case w.events <- Event{Kind: EventAgentAdded, Path: path}:
			case <-ctx.Done():
				return nil
			}

			g.Go(func() error {
				go tailer.Run()
				for {
					select {
					case upd, ok := <-tailer.Updates:
						if !ok {
							return nil
						}
						select {
						case w.events <- Event{Kind: EventAction, Path: upd.Path, Actions: upd.Actions}:
						case <-ctx.Done():
							return nil
						}
					case <-ctx.Done():
						tailer.Stop()
						return nil
					}
				}
			})
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			_ = g.Wait()
			return nil
		}
	}
}

// Stop cancels the watch loop started by Run.
func (w *MultiWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *MultiWatcher) discoverFiles() []string {
	if w.processMode {
		w.mu.Lock()
		defer w.mu.Unlock()
		var out []string
		for path, meta := range w.processMeta {
			if meta.Stopped {
				continue
			}
			out = append(out, path)
		}
		return out
	}

	var out []string
	for _, dir := range w.dirs {
		_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if strings.HasSuffix(path, ".jsonl") {
				out = append(out, path)
			}
			return nil
		})
	}
	return out
}
