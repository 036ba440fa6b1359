package logformat

// ActionBuffer is a fixed-capacity FIFO window over the most recent
// actions in a session, paired with cumulative SessionStats that survive
// eviction. Capacity defaults to 500, matching the teacher's scanner
// buffer sizing discipline (parser/session.go uses fixed 64KB/4MB caps
// for the same "bound memory, never grow unboundedly" reason).
type ActionBuffer struct {
	maxSize           int
	actions           []Action
	fileAccessCounts  map[string]int
	errorMessages     []string
	stats             SessionStats
}

const DefaultBufferCapacity = 500

// NewActionBuffer creates an ActionBuffer with the given capacity. A
// capacity <= 0 uses DefaultBufferCapacity.
func NewActionBuffer(capacity int) *ActionBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &ActionBuffer{
		maxSize:          capacity,
		fileAccessCounts: make(map[string]int),
		stats:            newSessionStats(),
	}
}

func (b *ActionBuffer) Len() int { return len(b.actions) }

func (b *ActionBuffer) Cap() int { return b.maxSize }

// Add appends an action, evicting the oldest action if at capacity, and
// updates the cumulative SessionStats (which never shrinks, even as
// individual actions fall out of the window).
func (b *ActionBuffer) Add(a Action) {
	if len(b.actions) >= b.maxSize {
		b.actions = b.actions[1:]
	}
	b.actions = append(b.actions, a)

	b.stats.ActionCount++
	b.stats.TotalTokens += a.TokensIn + a.TokensOut
	if b.stats.StartTime.IsZero() {
		b.stats.StartTime = a.Timestamp
	}
	if a.FilePath != "" {
		b.fileAccessCounts[a.FilePath]++
		b.stats.FilesTouched[a.FilePath] = struct{}{}
	}
	if !a.Success && a.ErrorMessage != "" {
		b.stats.ErrorCount++
		b.errorMessages = append(b.errorMessages, a.ErrorMessage)
	}
}

// Actions returns the actions currently in the window, oldest first.
func (b *ActionBuffer) Actions() []Action { return b.actions }

// Stats returns the cumulative session statistics.
func (b *ActionBuffer) Stats() SessionStats { return b.stats }

// Last returns the last n actions in the window (or fewer if the window
// is shorter than n).
func (b *ActionBuffer) Last(n int) []Action {
	if n >= len(b.actions) {
		return b.actions
	}
	if n <= 0 {
		return nil
	}
	return b.actions[len(b.actions)-n:]
}

// First returns the first n actions in the window.
func (b *ActionBuffer) First(n int) []Action {
	if n >= len(b.actions) {
		return b.actions
	}
	if n <= 0 {
		return nil
	}
	return b.actions[:n]
}

func (b *ActionBuffer) FileAccessCount(path string) int {
	return b.fileAccessCounts[path]
}

// FilesInWindow returns the unique file paths touched in the last n
// actions.
func (b *ActionBuffer) FilesInWindow(n int) map[string]struct{} {
	out := make(map[string]struct{})
	for _, a := range b.Last(n) {
		if a.FilePath != "" {
			out[a.FilePath] = struct{}{}
		}
	}
	return out
}

// EarlyFiles returns the unique file paths touched in the first n
// actions.
func (b *ActionBuffer) EarlyFiles(n int) map[string]struct{} {
	out := make(map[string]struct{})
	for _, a := range b.First(n) {
		if a.FilePath != "" {
			out[a.FilePath] = struct{}{}
		}
	}
	return out
}

// RecentErrors returns up to the last n error messages recorded.
func (b *ActionBuffer) RecentErrors(n int) []string {
	if n <= 0 {
		n = 10
	}
	if n >= len(b.errorMessages) {
		return b.errorMessages
	}
	return b.errorMessages[len(b.errorMessages)-n:]
}

// ActionsByFile returns all actions in the window touching path.
func (b *ActionBuffer) ActionsByFile(path string) []Action {
	var out []Action
	for _, a := range b.actions {
		if a.FilePath == path {
			out = append(out, a)
		}
	}
	return out
}

// BashCommands returns up to the last n bash commands in the window (all
// of them if n <= 0).
func (b *ActionBuffer) BashCommands(n int) []string {
	var cmds []string
	for _, a := range b.actions {
		if a.IsBash() && a.Command != "" {
			cmds = append(cmds, a.Command)
		}
	}
	if n > 0 && n < len(cmds) {
		return cmds[len(cmds)-n:]
	}
	return cmds
}

// NetworkActions returns all actions in the window with network activity.
func (b *ActionBuffer) NetworkActions() []Action {
	var out []Action
	for _, a := range b.actions {
		if a.IsNetwork() {
			out = append(out, a)
		}
	}
	return out
}
