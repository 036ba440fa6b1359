package discovery

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
)

const lsofTimeout = 5 * time.Second

// resolveClaudeCodeLog finds the JSONL session log a running claude-code
// process at pid is writing to. It first tries an exact match against
// the process's open file descriptors via lsof (grounded on
// original_source/discovery.py's _find_open_jsonl, which resolves this
// Open Question via `lsof -p <pid>` rather than a timestamp guess); if
// lsof is unavailable or returns no match, it falls back to the most
// recently modified *.jsonl file in the project's log directory.
func resolveClaudeCodeLog(cwd string, pid int32) (logFile, sessionID, attribution string) {
	root, err := logformat.ClaudeProjectsRoot()
	if err != nil {
		return "", "", ""
	}
	projectDir := filepath.Join(root, logformat.EncodeProjectPath(cwd))
	if _, err := os.Stat(projectDir); err != nil {
		return "", "", ""
	}

	if path := findOpenJSONL(projectDir, pid); path != "" {
		return path, logformat.ResolveSessionID(projectDir, path), "open_fd"
	}

	if path := newestJSONL(projectDir); path != "" {
		return path, logformat.ResolveSessionID(projectDir, path), "mtime_fallback"
	}

	return "", "", ""
}

// findOpenJSONL shells out to lsof to list pid's open files and returns
// the first one under projectDir ending in .jsonl. Any failure (lsof
// missing, timeout, permission denied) is treated as "no match" rather
// than an error — the caller falls back to mtime.
func findOpenJSONL(projectDir string, pid int32) string {
	ctx, cancel := context.WithTimeout(context.Background(), lsofTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "lsof", "-p", strconv.Itoa(int(pid)))
	out, err := cmd.Output()
	if err != nil {
		log.Debug().Err(err).Int32("pid", pid).Msg("lsof lookup failed, falling back to mtime")
		return ""
	}

	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		path := fields[len(fields)-1]
		if strings.HasSuffix(path, ".jsonl") && strings.HasPrefix(path, projectDir) {
			return path
		}
	}
	return ""
}

func newestJSONL(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestMod int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		if strings.HasPrefix(e.Name(), "agent_") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mt := info.ModTime().Unix(); mt > bestMod {
			bestMod = mt
			best = filepath.Join(dir, e.Name())
		}
	}
	return best
}

// resolveAiderLog finds aider's chat history log for a project directory.
// Aider writes a flat markdown transcript (.aider.chat.history.md) at the
// project root rather than a per-session JSONL file, so the project
// directory's base name stands in as the session id.
func resolveAiderLog(cwd string) (logFile, sessionID string) {
	candidate := filepath.Join(cwd, ".aider.chat.history.md")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, filepath.Base(cwd)
	}

	logsDir := filepath.Join(cwd, ".aider", "logs")
	if path := newestFile(logsDir); path != "" {
		return path, filepath.Base(cwd)
	}

	return "", ""
}

func newestFile(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestMod int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mt := info.ModTime().Unix(); mt > bestMod {
			bestMod = mt
			best = filepath.Join(dir, e.Name())
		}
	}
	return best
}
