// Package texcount approximates the prose word count of LaTeX source.
//
// The count is produced by an ordered list of regexp rewrite stages followed by
// whitespace tokenization. It is a heuristic, not a TeX parser: nested braces,
// multi-argument commands and custom macros are handled best-effort only.
package texcount

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Stage is one text rewrite step of the pipeline.
type Stage struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Pipeline is an ordered list of stages. Each stage sees the output of the
// previous one.
type Pipeline []Stage

// mathEnvironments are stripped entirely, including their starred forms.
var mathEnvironments = []string{"equation", "align", "math", "displaymath"}

// DefaultPipeline is the stage order used by Count.
var DefaultPipeline = buildPipeline()

func buildPipeline() Pipeline {
	p := Pipeline{
		// RE2 has no lookbehind, so the character before % and any run of
		// escaped backslashes are captured and put back. An odd run escapes the %.
		{"comments", regexp.MustCompile(`(?m)(^|[^\\])((?:\\\\)*)%.*$`), "${1}${2}"},
		{"emphasis", regexp.MustCompile(`\\(?:textbf|textit|emph|underline)\{([^}]*)\}`), "${1}"},
		{"commands", regexp.MustCompile(`\\[a-zA-Z]+\*?(?:\[[^\]]*\])?(?:\{[^}]*\})?`), " "},
		{"inline-math", regexp.MustCompile(`\$[^$\n]+\$`), " "},
		{"display-math", regexp.MustCompile(`(?s)\\\[.*?\\\]`), " "},
	}
	// No backreferences in RE2: one pattern per environment name.
	for _, env := range mathEnvironments {
		p = append(p, Stage{
			Name:        "math-environments",
			Pattern:     regexp.MustCompile(`(?s)\\begin\{` + env + `\*?\}.*?\\end\{` + env + `\*?\}`),
			Replacement: " ",
		})
	}
	return append(p, Stage{"braces", regexp.MustCompile(`[{}]`), " "})
}

// Apply runs every stage in order and returns the stripped text.
func (p Pipeline) Apply(text string) string {
	for _, s := range p {
		text = s.Pattern.ReplaceAllString(text, s.Replacement)
	}
	return text
}

// Count returns the number of whitespace separated tokens left after the
// pipeline strips markup.
func (p Pipeline) Count(text string) int {
	return len(strings.Fields(p.Apply(text)))
}

// Count approximates the prose word count of LaTeX source using
// DefaultPipeline. It never fails; malformed markup only skews the result.
func Count(text string) int {
	return DefaultPipeline.Count(text)
}

// Decode converts raw file bytes to valid UTF-8, substituting U+FFFD for
// undecodable sequences.
func Decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// CountFile reads, decodes and counts the file at path.
func CountFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return Count(Decode(b)), nil
}
