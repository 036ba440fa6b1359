package logformat

// LineConverter holds the per-file sticky state (detected format, and
// the Claude Code adapter's pending tool_use correlation map) needed to
// convert a stream of raw JSONL lines into Actions incrementally.
type LineConverter struct {
	format  Format
	adapter *ClaudeCodeAdapter
}

// NewLineConverter returns a ready-to-use converter for one log file.
func NewLineConverter() *LineConverter {
	return &LineConverter{adapter: NewClaudeCodeAdapter()}
}

// Convert processes a batch of raw lines (as read incrementally by a
// tailer, or all at once from a fully-read backlog) into Actions,
// detecting and caching the format from the first parseable line.
func (c *LineConverter) Convert(lines [][]byte) []Action {
	var actions []Action
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if c.format == "" {
			c.format = DetectFormat(line)
			if c.format == FormatSkip {
				c.format = ""
				continue
			}
		}
		switch c.format {
		case FormatClaudeCode:
			actions = append(actions, c.adapter.ProcessLine(line)...)
		case FormatGeneric:
			if a, ok := ParseGenericLine(line); ok {
				actions = append(actions, a)
			}
		}
	}
	return actions
}
