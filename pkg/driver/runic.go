package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"unicode/utf8"
)

// RunicCommandEnv overrides the transliteration command (space separated).
const RunicCommandEnv = "VALKYRIE_RUNIC"

// Transliterator rewrites rune-letter source into canonical Valkyrie source.
type Transliterator interface {
	Transliterate(ctx context.Context, source string) (string, error)
}

var letterGlyphs = map[rune]rune{
	'A': 'ᚪ', 'B': 'ᛔ', 'C': 'ᛈ', 'D': 'ᚣ', 'E': 'ᚯ', 'F': 'ᚡ', 'G': 'ᛥ',
	'H': 'ᚻ', 'I': 'ᛂ', 'J': 'ᚵ', 'K': 'ᛯ', 'L': 'ᛚ', 'M': 'ᛗ', 'N': 'ᚬ',
	'O': 'ᛟ', 'P': 'ᚹ', 'Q': 'ᚿ', 'R': 'ᚱ', 'S': 'ᛊ', 'T': 'ᛏ', 'U': 'ᚤ',
	'V': 'ᛤ', 'W': 'ᛠ', 'X': 'ᚷ', 'Y': 'ᛉ', 'Z': 'ᛢ',
	'a': 'ᚨ', 'b': 'ᛒ', 'c': 'ᚲ', 'd': 'ᚦ', 'e': 'ᛅ', 'f': 'ᚠ', 'g': 'ᛞ',
	'h': 'ᚺ', 'i': 'ᛁ', 'j': 'ᚴ', 'k': 'ᛘ', 'l': 'ᛐ', 'm': 'ᛖ', 'n': 'ᚾ',
	'o': 'ᛜ', 'p': 'ᛩ', 'q': 'ᛶ', 'r': 'ᛃ', 's': 'ᛋ', 't': 'ᛄ', 'u': 'ᚢ',
	'v': 'ᛡ', 'w': 'ᚳ', 'x': '×', 'y': 'ᛣ', 'z': 'ᛇ',
}

var keywordGlyphs = map[string]string{
	"var":    "𖤍",
	"fun":    "♅",
	"if":     "↟↟",
	"else":   "↟↡",
	"while":  "↟↠",
	"for":    "𒌐",
	"return": "↡",
	"and":    "↠↠",
	"class":  "🕈",
	"false":  "☽",
	"nil":    "☽𖤍",
	"or":     "↞↞",
	"print":  "♅♅",
	"super":  "🕈↟",
	"this":   "🕈↡",
	"true":   "𖤓",
}

type glyphKeyword struct {
	glyph   string
	keyword string
}

// RuneTable is the built-in transliterator. Letters map one to one;
// keywords are glyph sequences matched longest first. String literals and
// comments are copied through untouched.
type RuneTable struct {
	letters  map[rune]rune
	runes    map[rune]rune
	keywords []glyphKeyword
}

// NewRuneTable builds the standard rune table.
func NewRuneTable() *RuneTable {
	t := &RuneTable{
		letters: make(map[rune]rune, len(letterGlyphs)),
		runes:   make(map[rune]rune, len(letterGlyphs)),
	}
	for latin, glyph := range letterGlyphs {
		t.letters[glyph] = latin
		t.runes[latin] = glyph
	}
	for keyword, glyph := range keywordGlyphs {
		t.keywords = append(t.keywords, glyphKeyword{glyph: glyph, keyword: keyword})
	}
	sort.Slice(t.keywords, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(t.keywords[i].glyph), utf8.RuneCountInString(t.keywords[j].glyph)
		if li != lj {
			return li > lj
		}
		return t.keywords[i].glyph < t.keywords[j].glyph
	})
	return t
}

// Transliterate implements Transliterator.
func (t *RuneTable) Transliterate(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(source))
	line := 1
	for i := 0; i < len(source); {
		if n := literalSpan(source[i:]); n > 0 {
			span := source[i : i+n]
			b.WriteString(span)
			line += strings.Count(span, "\n")
			i += n
			continue
		}
		if kw, n := t.matchKeyword(source[i:]); n > 0 {
			b.WriteString(kw)
			i += n
			continue
		}
		r, size := utf8.DecodeRuneInString(source[i:])
		if r == utf8.RuneError && size == 1 {
			return "", fmt.Errorf("line %d: invalid UTF-8 encoding", line)
		}
		if latin, ok := t.letters[r]; ok {
			b.WriteRune(latin)
		} else {
			b.WriteRune(r)
		}
		if r == '\n' {
			line++
		}
		i += size
	}
	return b.String(), nil
}

func (t *RuneTable) matchKeyword(s string) (string, int) {
	for _, kw := range t.keywords {
		if strings.HasPrefix(s, kw.glyph) {
			return kw.keyword, len(kw.glyph)
		}
	}
	return "", 0
}

// Encode is the inverse of Transliterate: it rewrites Valkyrie source with
// rune letters and keyword glyphs.
func (t *RuneTable) Encode(source string) string {
	var b strings.Builder
	b.Grow(len(source) * 3)
	for i := 0; i < len(source); {
		if n := literalSpan(source[i:]); n > 0 {
			b.WriteString(source[i : i+n])
			i += n
			continue
		}
		if n := wordLength(source[i:]); n > 0 {
			word := source[i : i+n]
			if glyph, ok := keywordGlyphs[word]; ok {
				b.WriteString(glyph)
			} else {
				for _, r := range word {
					if glyph, ok := t.runes[r]; ok {
						b.WriteRune(glyph)
					} else {
						b.WriteRune(r)
					}
				}
			}
			i += n
			continue
		}
		r, size := utf8.DecodeRuneInString(source[i:])
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

// literalSpan returns the byte length of a string literal or comment at the
// start of s, or 0. Unterminated spans run to the end of s.
func literalSpan(s string) int {
	switch {
	case strings.HasPrefix(s, `"`):
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return end + 2
		}
		return len(s)
	case strings.HasPrefix(s, "//"):
		if end := strings.IndexByte(s, '\n'); end >= 0 {
			return end
		}
		return len(s)
	case strings.HasPrefix(s, "/*"):
		if end := strings.Index(s[2:], "*/"); end >= 0 {
			return end + 4
		}
		return len(s)
	}
	return 0
}

func wordLength(s string) int {
	n := 0
	for n < len(s) {
		c := s[n]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || n > 0 && c >= '0' && c <= '9' {
			n++
			continue
		}
		break
	}
	return n
}

// CommandTransliterator runs an external program with the source text as its
// final argument. Stdout is the translated source; a failing exit turns
// stderr into the error message.
type CommandTransliterator struct {
	Command []string
	Env     []string
}

// CommandFromEnv returns a CommandTransliterator configured from
// VALKYRIE_RUNIC, or nil when the variable is unset.
func CommandFromEnv() *CommandTransliterator {
	fields := strings.Fields(os.Getenv(RunicCommandEnv))
	if len(fields) == 0 {
		return nil
	}
	return &CommandTransliterator{Command: fields}
}

// Transliterate implements Transliterator.
func (c *CommandTransliterator) Transliterate(ctx context.Context, source string) (string, error) {
	if c == nil || len(c.Command) == 0 {
		return "", errors.New("runic: no transliteration command configured")
	}
	args := append(append([]string(nil), c.Command[1:]...), source)
	cmd := exec.CommandContext(ctx, c.Command[0], args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("runic: %s failed with error: %s", c.Command[0], strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("runic: failed to execute %s: %w", c.Command[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// SelectTransliterator picks the transliterator for a run: VALKYRIE_RUNIC
// wins, then the manifest's runic command, then the built-in table.
func SelectTransliterator(manifest *Manifest) Transliterator {
	if cmd := CommandFromEnv(); cmd != nil {
		return cmd
	}
	if manifest != nil && manifest.Runic != nil && len(manifest.Runic.Command) > 0 {
		return &CommandTransliterator{Command: append([]string(nil), manifest.Runic.Command...)}
	}
	return NewRuneTable()
}
