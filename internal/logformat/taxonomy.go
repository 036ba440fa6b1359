package logformat

// CategorizeToolName maps an agent-reported tool name to a normalized
// ToolKind. The table mirrors the teacher's per-CLI tool-name switch
// (parser/taxonomy.go's CategorizeToolName) extended with the browser/mcp
// categories spec's data model names but the teacher's transcript viewer
// never needed.
func CategorizeToolName(name string) ToolKind {
	switch name {
	// Claude Code
	case "Read", "NotebookRead":
		return ToolRead
	case "Write":
		return ToolWrite
	case "Edit", "NotebookEdit", "MultiEdit":
		return ToolEdit
	case "Bash", "BashOutput", "KillShell":
		return ToolBash
	case "Grep":
		return ToolSearch
	case "Glob":
		return ToolList
	case "LS":
		return ToolList
	case "Task", "Skill":
		return ToolMCP
	case "WebFetch", "WebSearch":
		return ToolBrowser

	// Codex
	case "shell_command", "exec_command", "write_stdin", "shell", "apply_patch":
		return ToolBash

	// Gemini
	case "read_file":
		return ToolRead
	case "write_file":
		return ToolWrite
	case "edit_file":
		return ToolEdit
	case "run_command", "execute_command":
		return ToolBash
	case "search_files", "grep":
		return ToolSearch

	// OpenCode (lowercase variants)
	case "read":
		return ToolRead
	case "edit":
		return ToolEdit
	case "write":
		return ToolWrite
	case "bash":
		return ToolBash
	case "glob":
		return ToolList
	case "task":
		return ToolMCP

	// Copilot
	case "view":
		return ToolRead
	case "report_intent":
		return ToolMCP

	// Cursor
	case "Shell":
		return ToolBash
	case "StrReplace":
		return ToolEdit

	default:
		switch {
		case hasMCPPrefix(name):
			return ToolMCP
		default:
			return ToolUnknown
		}
	}
}

// hasMCPPrefix recognizes the "mcp__<server>__<tool>" naming scheme used
// by Model Context Protocol tool registrations across agent CLIs.
func hasMCPPrefix(name string) bool {
	const prefix = "mcp__"
	return len(name) > len(prefix) && name[:len(prefix)] == prefix
}
