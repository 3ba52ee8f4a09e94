package harness

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	pyOwnMainRe       = regexp.MustCompile(`(?m)^if\s+__name__\s*==\s*["']__main__["']\s*:`)
	pySolutionClassRe = regexp.MustCompile(`(?i)class\s+Solution\s*[:(]`)
	pyMethodDefRe     = regexp.MustCompile(`def\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(\s*self\b`)
)

// stripPythonOwnMain removes every top-level `if __name__ == "__main__":`
// block: the header line plus the indented (or blank) lines after it, up to
// the next non-blank line at column zero. Code after the block is kept.
// Applying this function twice produces the same result both times,
// satisfying idempotence.
func stripPythonOwnMain(code string) string {
	for loc := pyOwnMainRe.FindStringIndex(code); loc != nil; loc = pyOwnMainRe.FindStringIndex(code) {
		lines := strings.SplitAfter(code[loc[1]:], "\n")
		end := loc[1] + len(lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" && !isSpace(line[0]) {
				break
			}
			end += len(line)
		}
		code = code[:loc[0]] + code[end:]
	}
	return code
}

func hasPythonOwnMain(code string) bool {
	return pyOwnMainRe.MatchString(code)
}

func hasPythonSolutionClass(code string) bool {
	return pySolutionClassRe.MatchString(code)
}

// pythonSolutionBody returns the indented body of the Solution class: every
// line after the class header up to the first non-blank line at column zero.
// Scoping method detection to the body keeps methods of any later top-level
// class from being mistaken for Solution's.
func pythonSolutionBody(code string) string {
	loc := pySolutionClassRe.FindStringIndex(code)
	if loc == nil {
		return ""
	}
	rest := code[loc[1]:]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return ""
	}
	rest = rest[nl+1:]

	var body strings.Builder
	for _, line := range strings.Split(rest, "\n") {
		if strings.TrimSpace(line) != "" && !isSpace(line[0]) {
			break
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	return body.String()
}

// firstPythonSolutionMethod returns the first non-dunder instance method
// name defined on the Solution class, or "" if none is found. Dunders like
// __init__ are skipped, not treated as the target.
func firstPythonSolutionMethod(code string) string {
	body := pythonSolutionBody(code)
	for _, m := range pyMethodDefRe.FindAllStringSubmatch(body, -1) {
		if strings.HasPrefix(m[1], "__") {
			continue
		}
		return m[1]
	}
	return ""
}

func indentLines(code string, spaces int) string {
	prefix := strings.Repeat(" ", spaces)
	var b strings.Builder
	b.WriteString(prefix)
	for i := 0; i < len(code); i++ {
		b.WriteByte(code[i])
		if code[i] == '\n' && i != len(code)-1 {
			b.WriteString(prefix)
		}
	}
	return b.String()
}

func wrapPython(source, stdin string, mode Mode, testInput string) (*Result, error) {
	stdinEscaped := escapeStringLiteral(stdin, '\'')

	if mode == ModePlain && hasPythonOwnMain(source) {
		return &Result{Recognized: true, Source: fmt.Sprintf(`import sys
import io

sys.stdin = io.StringIO('%s')

try:
%s
except Exception as e:
    print(f"Runtime Error: {type(e).__name__}: {e}", file=sys.stderr)
    sys.exit(1)
`, stdinEscaped, indentLines(source, 4))}, nil
	}

	if mode == ModePlain && !hasPythonSolutionClass(source) {
		// No own entry point and no Solution class: validate syntax only,
		// matching the "run without tests" path.
		return &Result{Recognized: true, Source: fmt.Sprintf(`import sys

# Submitted code (syntax validation only)
%s

# No output produced: add "if __name__ == '__main__':" to run this directly.
`, source)}, nil
	}

	if !hasPythonSolutionClass(source) {
		return &Result{Recognized: false, Source: fmt.Sprintf(`import sys

print(%q, file=sys.stderr)
print("", file=sys.stderr)
print("Example:", file=sys.stderr)
print("  class Solution:", file=sys.stderr)
print("      def add(self, a, b):", file=sys.stderr)
print("          return a + b", file=sys.stderr)
sys.exit(1)
`, hintNoSolutionClass)}, nil
	}

	method := firstPythonSolutionMethod(source)
	if method == "" {
		return &Result{Recognized: false, Source: fmt.Sprintf(`import sys

print(%q, file=sys.stderr)
print("Please add a method to your Solution class.", file=sys.stderr)
print("", file=sys.stderr)
print("Example:", file=sys.stderr)
print("  class Solution:", file=sys.stderr)
print("      def hello_world(self):", file=sys.stderr)
print("          return 'Hello, World!'", file=sys.stderr)
sys.exit(1)
`, hintNoMethod)}, nil
	}

	cleaned := stripPythonOwnMain(source)

	if mode == ModePlain {
		// The arity hint prints through the saved real stderr: inside the
		// redirect it would land in stderr_capture and be discarded when the
		// re-raised TypeError skips the replay below.
		return &Result{Recognized: true, Source: fmt.Sprintf(`import sys
import io
from contextlib import redirect_stdout, redirect_stderr

sys.stdin = io.StringIO('%s')

_stderr = sys.stderr
stdout_capture = io.StringIO()
stderr_capture = io.StringIO()

try:
    with redirect_stdout(stdout_capture), redirect_stderr(stderr_capture):
%s

        solution = Solution()
        try:
            result = solution.%s()
            if result is not None:
                print(result)
        except TypeError:
            print("Note: Method '%s' requires parameters.", file=_stderr)
            print("Tip: add test cases or your own \"if __name__ == '__main__':\" block.", file=_stderr)
            raise
    output = stdout_capture.getvalue()
    if output:
        print(output, end='')
    error = stderr_capture.getvalue()
    if error:
        print(error, file=sys.stderr, end='')
except Exception as e:
    print(f"Runtime Error: {type(e).__name__}: {e}", file=sys.stderr)
    sys.exit(1)
`, stdinEscaped, indentLines(cleaned, 8), method, method)}, nil
	}

	argsStr := strings.Join(parseArgs(testInput), ", ")

	return &Result{Recognized: true, Source: fmt.Sprintf(`# Submitted code
%s

# Test execution
if __name__ == '__main__':
    try:
        solution = Solution()
        result = solution.%s(%s)
        if result is not None:
            print(result)
    except Exception as e:
        print(f"Error: {e}", file=__import__('sys').stderr)
        raise
`, cleaned, method, argsStr)}, nil
}
