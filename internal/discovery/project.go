package discovery

import (
	"os"
	"path/filepath"
	"strings"
)

// resolveProjectName returns a display name for an agent's working
// directory: the git repository root's directory name if cwd is inside
// one (handling worktrees and submodules via the .git file indirection),
// falling back to filepath.Base(cwd) otherwise. Adapted from the
// teacher's parser/project.go ProjectName/findGitRepoRoot, trimmed of
// the branch-suffix normalization (agent processes here aren't tracked
// against a known branch, unlike the teacher's transcript picker).
func resolveProjectName(cwd string) string {
	if cwd == "" {
		return ""
	}
	cleaned := filepath.Clean(cwd)
	if root := findGitRepoRoot(cleaned); root != "" {
		return filepath.Base(root)
	}
	return filepath.Base(cleaned)
}

func findGitRepoRoot(dir string) string {
	current := dir
	if info, err := os.Stat(current); err == nil {
		if !info.IsDir() {
			current = filepath.Dir(current)
		}
	} else {
		if !strings.ContainsRune(current, filepath.Separator) {
			return ""
		}
		current = filepath.Dir(current)
	}

	for {
		gitPath := filepath.Join(current, ".git")
		info, err := os.Stat(gitPath)
		if err == nil {
			if info.IsDir() {
				return current
			}
			if info.Mode().IsRegular() {
				if root := repoRootFromGitFile(current, gitPath); root != "" {
					return root
				}
				return current
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

func repoRootFromGitFile(repoDir, gitFilePath string) string {
	gitDir := readGitDirFromFile(gitFilePath)
	if gitDir == "" {
		return ""
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Clean(filepath.Join(filepath.Dir(gitFilePath), gitDir))
	}

	if commonDir := readCommonDir(gitDir); commonDir != "" && filepath.Base(commonDir) == ".git" {
		return filepath.Dir(commonDir)
	}

	marker := string(filepath.Separator) + ".git" +
		string(filepath.Separator) + "worktrees" +
		string(filepath.Separator)
	if root, _, found := strings.Cut(gitDir, marker); found && root != "" {
		return filepath.Clean(root)
	}

	return repoDir
}

func readGitDirFromFile(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		const prefix = "gitdir:"
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return ""
}

func readCommonDir(gitDir string) string {
	b, err := os.ReadFile(filepath.Join(gitDir, "commondir"))
	if err != nil {
		return ""
	}
	value := strings.TrimSpace(string(b))
	if value == "" {
		return ""
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Clean(filepath.Join(gitDir, value))
}
