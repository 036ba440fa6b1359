package tail

import "github.com/kylesnowschwartz/agentwatch/internal/logformat"

// LoadBacklog reads a session log file from the start and converts its
// full contents to Actions in one pass, for one-shot commands (check,
// security-scan) that don't need a live tail.
func LoadBacklog(path string) ([]logformat.Action, error) {
	lines, _, err := ReadNewLines(path, 0)
	if err != nil {
		return nil, err
	}
	return logformat.NewLineConverter().Convert(lines), nil
}
