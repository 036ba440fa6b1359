package dashboard

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// warningRenderer renders a Warning's suggestion text as markdown (via
// glamour) and highlights Details["command"] evidence (via chroma),
// giving both teacher dependencies a new home: the teacher used these
// to render AI message transcripts and tool-call JSON, neither of
// which this dashboard shows.
type warningRenderer struct {
	md     *glamour.TermRenderer
	mdW    int
	hl     *evidenceHighlighter
}

func newWarningRenderer() *warningRenderer {
	return &warningRenderer{hl: newEvidenceHighlighter(termenv.HasDarkBackground())}
}

// renderSuggestion renders a warning's suggestion field as markdown at
// the given terminal width, falling back to the raw string on error.
func (r *warningRenderer) renderSuggestion(text string, width int) string {
	if width <= 0 || text == "" {
		return text
	}
	if r.md == nil || r.mdW != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStyles(glamourAutoStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		r.md = renderer
		r.mdW = width
	}
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func glamourAutoStyle() ansi.StyleConfig {
	var style ansi.StyleConfig
	switch {
	case !term.IsTerminal(int(os.Stdout.Fd())):
		style = glamourstyles.NoTTYStyleConfig
	case termenv.HasDarkBackground():
		style = glamourstyles.DarkStyleConfig
	default:
		style = glamourstyles.LightStyleConfig
	}
	zero := uint(0)
	style.Document.Margin = &zero
	return style
}

// evidenceHighlighter syntax-highlights the command text carried in a
// warning's Details["command"], using the bash lexer rather than the
// teacher's json_highlight.go JSON lexer (warning evidence here is shell
// commands, not tool-call JSON payloads). File paths are not highlighted.
type evidenceHighlighter struct {
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

func newEvidenceHighlighter(hasDarkBg bool) *evidenceHighlighter {
	lexer := chroma.Coalesce(lexers.Get("bash"))
	styleName := "github"
	if hasDarkBg {
		styleName = "dracula"
	}
	profile := colorprofile.Detect(os.Stderr, os.Environ())
	return &evidenceHighlighter{
		lexer:     lexer,
		formatter: formatters.Get(chromaFormatterName(profile)),
		style:     styles.Get(styleName),
	}
}

func (h *evidenceHighlighter) highlightCommand(cmd string) string {
	if cmd == "" {
		return cmd
	}
	iter, err := h.lexer.Tokenise(nil, cmd)
	if err != nil {
		return cmd
	}
	var out strings.Builder
	if err := h.formatter.Format(&out, h.style, iter); err != nil {
		return cmd
	}
	return strings.TrimRight(out.String(), "\n")
}

func chromaFormatterName(profile colorprofile.Profile) string {
	switch profile {
	case colorprofile.TrueColor:
		return "terminal16m"
	case colorprofile.ANSI256:
		return "terminal256"
	case colorprofile.ANSI:
		return "terminal16"
	default:
		return "terminal"
	}
}
