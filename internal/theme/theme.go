// Package theme defines the four-level status banding (emoji, color,
// label) used to present health/efficiency/rot scores, and a small
// built-in registry of named themes a user can switch between.
package theme

// Level is one of the four status bands a score falls into.
type Level int

const (
	LevelHealthy Level = iota
	LevelOK
	LevelDegraded
	LevelCritical
)

// StatusFromScore bands a 0-100 score into a Level using the 80/60/40
// thresholds ported from original_source/themes.py's status_from_score
// — distinct from health/score.py's own internal 80/50 CategoryScore
// banding (see score.categoryStatus), which exists at a different layer
// and is intentionally not unified with this one.
func StatusFromScore(score float64) Level {
	switch {
	case score >= 80:
		return LevelHealthy
	case score >= 60:
		return LevelOK
	case score >= 40:
		return LevelDegraded
	default:
		return LevelCritical
	}
}

// StatusTheme names an emoji/color/label for each of the four levels.
type StatusTheme struct {
	Name string

	Emoji [4]string
	Color [4]string
	Label [4]string
}

func (t StatusTheme) EmojiFor(l Level) string { return t.Emoji[l] }
func (t StatusTheme) ColorFor(l Level) string  { return t.Color[l] }
func (t StatusTheme) LabelFor(l Level) string  { return t.Label[l] }

var builtin = map[string]StatusTheme{
	"agent": {
		Name:  "agent",
		Emoji: [4]string{"🟢", "🟡", "🟠", "🔴"},
		Color: [4]string{"#3fb950", "#d29922", "#db6d28", "#f85149"},
		Label: [4]string{"healthy", "ok", "degraded", "critical"},
	},
	"minimal": {
		Name:  "minimal",
		Emoji: [4]string{"*", "*", "!", "!!"},
		Color: [4]string{"#3fb950", "#d29922", "#db6d28", "#f85149"},
		Label: [4]string{"healthy", "ok", "degraded", "critical"},
	},
	"traffic_light": {
		Name:  "traffic_light",
		Emoji: [4]string{"🟢", "🟢", "🟡", "🔴"},
		Color: [4]string{"#2ea043", "#2ea043", "#e3b341", "#e5534b"},
		Label: [4]string{"go", "go", "caution", "stop"},
	},
}

const DefaultTheme = "agent"

// Get returns the named built-in theme, falling back to DefaultTheme if
// name is unknown or empty.
func Get(name string) StatusTheme {
	if t, ok := builtin[name]; ok {
		return t
	}
	return builtin[DefaultTheme]
}

// List returns every built-in theme name, sorted for stable CLI output.
func List() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}
