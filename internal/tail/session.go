package tail

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
)

const writeDebounce = 500 * time.Millisecond

// Update is emitted on a SessionTailer's channel whenever new actions are
// available.
type Update struct {
	Path    string
	Actions []logformat.Action
}

// SessionTailer watches a single session log file for appended lines,
// converting them to Actions via the detected format's adapter and
// delivering them on Updates. Grounded on the teacher's sessionWatcher
// (watcher.go): one fsnotify watch per file, a debounce timer to coalesce
// bursts of writes into a single re-read, and a done channel for clean
// shutdown.
type SessionTailer struct {
	Path string

	offset    int64
	converter *logformat.LineConverter

	Updates chan Update
	Errors  chan error
	done    chan struct{}

	mu      sync.Mutex
	debounce *time.Timer
}

func NewSessionTailer(path string) *SessionTailer {
	return &SessionTailer{
		Path:      path,
		converter: logformat.NewLineConverter(),
		Updates:   make(chan Update, 8),
		Errors:    make(chan error, 1),
		done:      make(chan struct{}),
	}
}

// Stop ends the watch loop. Safe to call more than once.
func (t *SessionTailer) Stop() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	t.mu.Lock()
	if t.debounce != nil {
		t.debounce.Stop()
	}
	t.mu.Unlock()
}

// Run reads the file's existing backlog from byte 0, then watches for
// appends until Stop is called. Intended to run in its own goroutine.
func (t *SessionTailer) Run() {
	defer close(t.Updates)
	defer close(t.Errors)

	if upd, err := t.poll(); err != nil {
		t.sendErr(err)
	} else if upd != nil {
		t.send(*upd)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.sendErr(err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(t.Path); err != nil {
		t.sendErr(err)
		return
	}

	for {
		select {
		case <-t.done:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				t.scheduleDebounced()
			}
			if ev.Op&fsnotify.Remove != 0 {
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("path", t.Path).Msg("tail watcher error")
		}
	}
}

func (t *SessionTailer) scheduleDebounced() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.debounce != nil {
		t.debounce.Stop()
	}
	t.debounce = time.AfterFunc(writeDebounce, func() {
		upd, err := t.poll()
		if err != nil {
			t.sendErr(err)
			return
		}
		if upd != nil {
			t.send(*upd)
		}
	})
}

// poll reads any new complete lines since the last offset and converts
// them to Actions via the detected adapter.
func (t *SessionTailer) poll() (*Update, error) {
	lines, newOffset, err := ReadNewLines(t.Path, t.offset)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	t.offset = newOffset

	actions := t.converter.Convert(lines)
	if len(actions) == 0 {
		return nil, nil
	}
	return &Update{Path: t.Path, Actions: actions}, nil
}

func (t *SessionTailer) send(u Update) {
	select {
	case t.Updates <- u:
	case <-t.done:
	}
}

func (t *SessionTailer) sendErr(err error) {
	select {
	case t.Errors <- err:
	default:
	}
}
