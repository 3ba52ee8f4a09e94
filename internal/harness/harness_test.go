package harness

import (
	"strings"
	"testing"

	"github.com/practicearena/coachcore/internal/model"
)

func TestWrapPythonSolutionTestMode(t *testing.T) {
	source := "class Solution:\n    def add(self, a, b):\n        return a + b"

	result, err := Wrap(source, model.LanguagePython, "", ModeTest, "5, 3")
	if err != nil {
		t.Fatalf("Wrap returned error: %v", err)
	}
	if !result.Recognized {
		t.Fatal("expected recognized Solution form")
	}
	if !strings.Contains(result.Source, "solution.add(5, 3)") {
		t.Errorf("expected call with spliced args, got:\n%s", result.Source)
	}
}

func TestWrapPythonNoSolutionClass(t *testing.T) {
	result, err := Wrap("print('hi')", model.LanguagePython, "", ModeTest, "")
	if err != nil {
		t.Fatalf("Wrap returned error: %v", err)
	}
	if result.Recognized {
		t.Fatal("expected unrecognized form for missing Solution class")
	}
	if !strings.Contains(result.Source, "Solution class") {
		t.Errorf("expected guidance hint mentioning Solution class, got:\n%s", result.Source)
	}
}

func TestWrapPythonNoMethod(t *testing.T) {
	result, err := Wrap("class Solution:\n    pass", model.LanguagePython, "", ModeTest, "")
	if err != nil {
		t.Fatalf("Wrap returned error: %v", err)
	}
	if result.Recognized {
		t.Fatal("expected unrecognized form for methodless Solution class")
	}
}

func TestWrapJavaSolutionTestMode(t *testing.T) {
	source := "class Solution { public int add(int a, int b) { return a + b; } }"

	result, err := Wrap(source, model.LanguageJava, "", ModeTest, "5, 3")
	if err != nil {
		t.Fatalf("Wrap returned error: %v", err)
	}
	if !result.Recognized {
		t.Fatal("expected recognized Solution form")
	}
	if !strings.Contains(result.Source, "solution.add(5, 3)") {
		t.Errorf("expected call with spliced args, got:\n%s", result.Source)
	}
	if !strings.Contains(result.Source, "System.out.println(result)") {
		t.Errorf("expected printed result for non-void method, got:\n%s", result.Source)
	}
}

func TestWrapJavaMissingSolutionClass(t *testing.T) {
	result, err := Wrap(`System.out.println("hi");`, model.LanguageJava, "", ModeTest, "")
	if err != nil {
		t.Fatalf("Wrap returned error: %v", err)
	}
	if result.Recognized {
		t.Fatal("expected unrecognized form for missing Solution class")
	}
	if !strings.Contains(result.Source, "Solution class") {
		t.Errorf("expected guidance hint mentioning Solution class, got:\n%s", result.Source)
	}
}

func TestStripJavaOwnMainIdempotent(t *testing.T) {
	source := `class Solution {
    public static void main(String[] args) {
        System.out.println("self test");
    }
}`
	once := stripJavaOwnMain(source)
	twice := stripJavaOwnMain(once)
	if once != twice {
		t.Errorf("stripJavaOwnMain is not idempotent:\nonce:\n%s\ntwice:\n%s", once, twice)
	}
	if strings.Contains(once, "main") {
		t.Errorf("expected main method removed, got:\n%s", once)
	}
}

func TestStripPythonOwnMainIdempotent(t *testing.T) {
	source := "class Solution:\n    def add(self, a, b):\n        return a + b\n\nif __name__ == '__main__':\n    print(Solution().add(1, 2))\n"
	once := stripPythonOwnMain(source)
	twice := stripPythonOwnMain(once)
	if once != twice {
		t.Errorf("stripPythonOwnMain is not idempotent:\nonce: %q\ntwice: %q", once, twice)
	}
	if strings.Contains(once, "__main__") {
		t.Errorf("expected main block removed, got: %q", once)
	}
}

func TestParseArgsNoneSentinel(t *testing.T) {
	for _, in := range []string{"", "none", "None", "NONE"} {
		if got := parseArgs(in); got != nil {
			t.Errorf("parseArgs(%q) = %v, want nil", in, got)
		}
	}
}

func TestParseArgsPreservesTokensVerbatim(t *testing.T) {
	got := parseArgs(`"hello", "world"`)
	want := []string{`"hello"`, `"world"`}
	if len(got) != len(want) {
		t.Fatalf("parseArgs length = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseArgs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseArgsIntegerUnquoted(t *testing.T) {
	got := parseArgs("5, 3")
	want := []string{"5", "3"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("parseArgs(\"5, 3\") = %v, want %v", got, want)
	}
}

func TestWrapPythonSkipsDunderMethods(t *testing.T) {
	source := "class Solution:\n    def __init__(self):\n        self.total = 0\n    def add(self, a, b):\n        return a + b"

	result, err := Wrap(source, model.LanguagePython, "", ModeTest, "1, 2")
	if err != nil {
		t.Fatalf("Wrap returned error: %v", err)
	}
	if !result.Recognized {
		t.Fatal("expected recognized Solution form despite leading __init__")
	}
	if !strings.Contains(result.Source, "solution.add(1, 2)") {
		t.Errorf("expected __init__ skipped in favor of add, got:\n%s", result.Source)
	}
}

func TestWrapPythonIgnoresLaterClassMethods(t *testing.T) {
	source := "class Solution:\n    pass\n\nclass Helper:\n    def compute(self):\n        return 42"

	result, err := Wrap(source, model.LanguagePython, "", ModeTest, "")
	if err != nil {
		t.Fatalf("Wrap returned error: %v", err)
	}
	if result.Recognized {
		t.Fatal("a method on a different class must not count as Solution's")
	}
}

func TestWrapJavaSkipsOwnMainInTestMode(t *testing.T) {
	source := `class Solution {
    public static void main(String[] args) {
        System.out.println(new Solution().add(1, 1));
    }
    public int add(int a, int b) { return a + b; }
}`

	result, err := Wrap(source, model.LanguageJava, "", ModeTest, "2, 3")
	if err != nil {
		t.Fatalf("Wrap returned error: %v", err)
	}
	if !result.Recognized {
		t.Fatal("expected recognized Solution form")
	}
	if !strings.Contains(result.Source, "solution.add(2, 3)") {
		t.Errorf("expected add targeted instead of the student's main, got:\n%s", result.Source)
	}
	if strings.Contains(result.Source, "new Solution().add(1, 1)") {
		t.Errorf("expected student's main stripped from the wrapper, got:\n%s", result.Source)
	}
}

func TestWrapPythonOwnMainHonored(t *testing.T) {
	source := "class Solution:\n    def add(self, a, b):\n        return a + b\n\nif __name__ == '__main__':\n    print(Solution().add(2, 2))\n"
	result, err := Wrap(source, model.LanguagePython, "", ModePlain, "")
	if err != nil {
		t.Fatalf("Wrap returned error: %v", err)
	}
	if !result.Recognized {
		t.Fatal("expected own-main form recognized")
	}
	if !strings.Contains(result.Source, "Solution().add(2, 2)") {
		t.Errorf("expected student's own main preserved, got:\n%s", result.Source)
	}
}
