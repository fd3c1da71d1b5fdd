package formatter

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

const chromaStyle = "monokai"

// highlighter colours source lines by the lexer chosen from a file name.
type highlighter struct {
	style *chroma.Style
	lexer chroma.Lexer
}

func newHighlighter(path string) *highlighter {
	style := styles.Get(chromaStyle)
	if style == nil {
		style = styles.Fallback
	}
	return &highlighter{style: style, lexer: lexerFor(path)}
}

// lexerFor returns a lexer for path, or nil when none matches.
func lexerFor(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	if l := lexers.Match(filepath.Base(path)); l != nil {
		return l
	}
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); ext != "" {
		return lexers.Get(ext)
	}
	return nil
}

// line highlights a single line of code. Unknown languages pass through.
func (h *highlighter) line(s string) string {
	if h.lexer == nil {
		return s
	}
	it, err := h.lexer.Tokenise(nil, s)
	if err != nil {
		return s
	}

	tokens := it.Tokens()
	// Lexers that ensure a trailing newline add one the input lacked.
	if n := len(tokens); n > 0 && !strings.HasSuffix(s, "\n") {
		tokens[n-1].Value = strings.TrimSuffix(tokens[n-1].Value, "\n")
	}

	var b strings.Builder
	for _, tok := range tokens {
		if tok.Value != "" {
			b.WriteString(h.token(tok))
		}
	}
	return b.String()
}

func (h *highlighter) token(tok chroma.Token) string {
	entry := h.style.Get(tok.Type)
	if entry == (chroma.StyleEntry{}) {
		return tok.Value
	}

	st := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		st = st.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	return st.Render(tok.Value)
}

// highlightPatch colours a complete patch with chroma's diff lexer.
func highlightPatch(text string) string {
	var b strings.Builder
	if err := quick.Highlight(&b, text, "diff", "terminal256", chromaStyle); err != nil {
		return text
	}
	return b.String()
}
