package textextract

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

// Thresholds for the byte-scan passes.
const (
	parenPassMin     = 50
	blockPassMin     = 20
	printableRunMin  = 20
	printableLetters = 5
	alnumRatio       = 0.3
)

var (
	parenRun       = regexp.MustCompile(`\(((?:\\.|[^()\\])*)\)`)
	textBlock      = regexp.MustCompile(`(?s)\bBT\b(.*?)\bET\b`)
	showOperand    = regexp.MustCompile(`\(((?:\\.|[^()\\])*)\)\s*(?:Tj|'|")`)
	showArray      = regexp.MustCompile(`(?s)\[(.*?)\]\s*TJ`)
	printableASCII = regexp.MustCompile(`[\x20-\x7E]{20,}`)
	alnumPattern   = regexp.MustCompile(`[A-Za-z0-9]`)
)

// HeuristicStrategy scans the raw bytes for text when no parser can read the file.
type HeuristicStrategy struct{}

func (HeuristicStrategy) Name() string { return "heuristic" }

func (HeuristicStrategy) Extract(_ context.Context, doc *Document) (string, error) {
	raw := latin1(doc.Data)

	text := cleanText(parenText(raw))
	if len(text) < parenPassMin {
		if alt := cleanText(blockText(raw)); len(alt) > len(text) {
			text = alt
		}
	}
	if len(text) < blockPassMin {
		if alt := cleanText(printableText(raw)); len(alt) > len(text) {
			text = alt
		}
	}
	if text == "" {
		return "", errNoTextRuns
	}
	return text, nil
}

// latin1 decodes one byte per character.
func latin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

func parenText(raw string) string {
	var parts []string
	for _, m := range parenRun.FindAllStringSubmatch(raw, -1) {
		s := unescapeString(m[1])
		if len(s) > 1 && alnumPattern.MatchString(s) {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func blockText(raw string) string {
	var parts []string
	for _, block := range textBlock.FindAllStringSubmatch(raw, -1) {
		for _, m := range showOperand.FindAllStringSubmatch(block[1], -1) {
			parts = append(parts, unescapeString(m[1]))
		}
		for _, arr := range showArray.FindAllStringSubmatch(block[1], -1) {
			var sb strings.Builder
			for _, m := range parenRun.FindAllStringSubmatch(arr[1], -1) {
				sb.WriteString(unescapeString(m[1]))
			}
			parts = append(parts, sb.String())
		}
	}
	return strings.Join(parts, " ")
}

func printableText(raw string) string {
	var parts []string
	for _, run := range printableASCII.FindAllString(raw, -1) {
		letters, digits := 0, 0
		for _, r := range run {
			switch {
			case unicode.IsLetter(r):
				letters++
			case unicode.IsDigit(r):
				digits++
			}
		}
		if letters > printableLetters && float64(letters+digits) >= alnumRatio*float64(len(run)) {
			parts = append(parts, run)
		}
	}
	return strings.Join(parts, " ")
}

// unescapeString resolves the backslash escapes of a PDF literal string.
func unescapeString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'r', 't', 'f', 'b':
			sb.WriteByte(' ')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// cleanText drops non-printable characters and collapses whitespace.
func cleanText(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7E {
			return ' '
		}
		return r
	}, s)
	return collapseSpaces(mapped)
}
