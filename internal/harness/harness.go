// Package harness synthesizes a compilable, runnable driver around a
// student's submitted source so the sandbox always has a single entry
// point to invoke, whether the student wrote their own or just a bare
// Solution class.
package harness

import (
	"fmt"
	"strings"

	"github.com/practicearena/coachcore/internal/model"
)

// Mode selects how Wrap should drive the student's code.
type Mode int

const (
	// ModePlain runs the student's own entry point when there is one;
	// otherwise it calls the Solution class's first method with no
	// arguments. Python source with no Solution class is run as submitted.
	ModePlain Mode = iota
	// ModeTest wraps the Solution method call with one test case's arguments.
	ModeTest
)

// Hint strings surfaced to the student through stderr when their submission
// does not match a recognized form. Exact wording matters: tests look for
// "Solution class" in these strings per the execution error contract.
const (
	hintNoSolutionClass = "Error: please define a Solution class with your methods."
	hintNoMethod        = "Error: Solution class found but no methods defined."
)

// Result is what Wrap produces: a ready-to-run source file plus whether the
// student form was recognized at all (false only for the guidance-hint
// cases, which still produce valid, runnable source).
type Result struct {
	Source    string
	Recognized bool
}

// Wrap inspects source, detects the student's form per language, and
// returns synthesized driver source ready to run in the sandbox. stdin is
// injected ahead of any student I/O. In ModeTest, testInput is the test
// case's comma-separated argument literal.
func Wrap(source string, language model.Language, stdin string, mode Mode, testInput string) (*Result, error) {
	switch language {
	case model.LanguagePython:
		return wrapPython(source, stdin, mode, testInput)
	case model.LanguageJava:
		return wrapJava(source, stdin, mode, testInput)
	default:
		return nil, fmt.Errorf("harness: unsupported language %q", language)
	}
}

// parseArgs splits a test input literal into positional argument tokens,
// preserving each token byte-for-byte. "" and the case-insensitive sentinel
// "none" both mean zero arguments. Splitting is top-level only: commas
// inside brackets, parens, braces, or quoted strings do not split.
func parseArgs(input string) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.EqualFold(trimmed, "none") {
		return nil
	}
	parts := splitTopLevelComma(trimmed)
	args := make([]string, 0, len(parts))
	for _, p := range parts {
		args = append(args, strings.TrimSpace(p))
	}
	return args
}

// splitTopLevelComma splits s on commas that are not nested inside
// brackets, parens, or braces, so an argument like "[1, 2, 3]" survives as
// one token instead of being split apart.
func splitTopLevelComma(s string) []string {
	var parts []string
	depth := 0
	start := 0
	inString := false
	var stringQuote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			if c == '\\' {
				i++
				continue
			}
			if c == stringQuote {
				inString = false
			}
		case c == '"' || c == '\'':
			inString = true
			stringQuote = c
		case c == '[' || c == '(' || c == '{':
			depth++
		case c == ']' || c == ')' || c == '}':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// escapeStringLiteral escapes backslash, quote, newline, carriage return,
// and tab so s can be embedded inside a single-quoted (Python) or
// double-quoted (Java) string literal.
func escapeStringLiteral(s string, quote byte) string {
	out := make([]byte, 0, len(s)+8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			out = append(out, '\\', '\\')
		case quote:
			out = append(out, '\\', quote)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
