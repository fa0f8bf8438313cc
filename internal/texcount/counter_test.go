package texcount

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", " \n\t \n", 0},
		{"plain prose", "The quick brown fox jumps.", 5},
		{"comment line", "% nothing here counts\nhello world", 2},
		{"trailing comment", "hello % trailing comment", 1},
		{"escaped percent", `50\% of the time`, 4},
		{"escaped then comment", `100\%% the rest is gone`, 1},
		{"line break then comment", "First line\\\\% a trailing comment with five words\nSecond line", 4},
		{"escaped percent after line break", `one\\\% two`, 2},
		{"emphasis", `\textbf{hello world}`, 2},
		{"mixed emphasis", `\emph{very} important \textit{words} \underline{here}`, 4},
		{"inline math", "a $x+y=z$ b", 2},
		{"section title dropped", `\section{Introduction} This is text.`, 3},
		{"starred command", `\section*{Intro} words here`, 2},
		{"options and argument", `\includegraphics[width=0.5\textwidth]{fig.png} Caption`, 1},
		{"display math", `before \[ x = 1 \] after`, 2},
		{"display math multiline", "before\n\\[\nE = mc^2\n\\]\nafter", 2},
		{"grouping braces", "{grouped} text", 2},
		{"second argument kept", `\newcommand{\foo}{bar} baz`, 2},
		{"unclosed emphasis", `\textbf{unclosed text`, 2},
		{"bare command", `\maketitle`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.text); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d (stripped: %q)", tt.text, got, tt.want, DefaultPipeline.Apply(tt.text))
			}
		})
	}
}

func TestCountIgnoresCommentLines(t *testing.T) {
	body := "Some prose here.\n"
	base := Count(body)

	comments := []string{
		"% short",
		"% a much longer comment with many many words in it",
		`% \textbf{bold} $math$ {braces}`,
		"%",
	}
	for _, c := range comments {
		if got := Count(c + "\n" + body); got != base {
			t.Errorf("Count with comment %q = %d, want %d", c, got, base)
		}
	}
}

func TestEmphasisMatchesPlainText(t *testing.T) {
	for _, cmd := range []string{"textbf", "textit", "emph", "underline"} {
		wrapped := `\` + cmd + `{hello world}`
		if got, want := Count(wrapped), Count("hello world"); got != want || got != 2 {
			t.Errorf("Count(%q) = %d, want %d", wrapped, got, want)
		}
	}
}

func TestMathEnvironmentStage(t *testing.T) {
	text := "before \\begin{equation*}\nE = mc^2\n\\end{equation*} after"

	got := text
	for _, s := range DefaultPipeline {
		if s.Name == "math-environments" {
			got = s.Pattern.ReplaceAllString(got, s.Replacement)
		}
	}
	if n := len(strings.Fields(got)); n != 2 {
		t.Errorf("math environment stage left %q, want 2 tokens", got)
	}

	mismatched := `\begin{equation} x \end{align}`
	for _, s := range DefaultPipeline {
		if s.Name == "math-environments" && s.Pattern.MatchString(mismatched) {
			t.Errorf("stage %q matched mismatched environment names", s.Pattern)
		}
	}
}

func TestMathEnvironmentAfterCommandStrip(t *testing.T) {
	// The command stage runs first and removes \begin{..}/\end{..} on its own,
	// so the environment body is counted like prose.
	text := `before \begin{equation} E = mc^2 \end{equation} after`
	if got := Count(text); got != 5 {
		t.Errorf("Count(%q) = %d, want 5", text, got)
	}
}

func TestPipelineOrder(t *testing.T) {
	want := []string{
		"comments", "emphasis", "commands", "inline-math", "display-math",
		"math-environments", "math-environments", "math-environments", "math-environments",
		"braces",
	}
	if len(DefaultPipeline) != len(want) {
		t.Fatalf("pipeline has %d stages, want %d", len(DefaultPipeline), len(want))
	}
	for i, s := range DefaultPipeline {
		if s.Name != want[i] {
			t.Errorf("stage %d = %q, want %q", i, s.Name, want[i])
		}
	}
}

func TestDecode(t *testing.T) {
	raw := []byte{'h', 'i', 0xff, ' ', 'y', 'o', 0xc3}
	got := Decode(raw)
	if !utf8.ValidString(got) {
		t.Fatalf("Decode returned invalid UTF-8: %q", got)
	}
	if !strings.Contains(got, "�") {
		t.Errorf("Decode(%q) = %q, want replacement character", raw, got)
	}
	if n := Count(got); n != 2 {
		t.Errorf("Count(Decode) = %d, want 2", n)
	}
}

func TestCountFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chapter.tex")
	if err := os.WriteFile(path, []byte("\\chapter{One}\nIt was a dark night.\n% todo\n"), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := CountFile(path)
	if err != nil {
		t.Fatalf("CountFile: %v", err)
	}
	if n != 5 {
		t.Errorf("CountFile = %d, want 5", n)
	}

	if _, err := CountFile(filepath.Join(dir, "missing.tex")); err == nil {
		t.Error("expected error for missing file")
	}
}
