package sandbox

import (
	"time"

	"github.com/practicearena/coachcore/internal/model"
)

// LanguageSpec defines how to sandbox one supported language: which image to
// run, the resource ceilings to impose, the default/max timeouts, and how to
// turn a source file into a command the image's entrypoint can run.
type LanguageSpec struct {
	Language Language

	Image string // Docker image reference

	FileName string // source file name written into the workdir, e.g. "Main.java"
	FileExt  string // source file extension, e.g. ".py"

	MemoryLimit string // Docker --memory value, e.g. "128m"
	CPUQuota    string // Docker --cpus value, e.g. "0.5"
	PidsLimit   int    // Docker --pids-limit value

	DefaultTimeout time.Duration
	MaxTimeout     time.Duration

	// BuildArgs returns the command (argv, no shell) the container entrypoint
	// executes against the mounted workdir.
	BuildArgs func(workdir string) []string
}

// Language mirrors model.Language but stays local to the sandbox package so
// the registry can be extended without touching the model package.
type Language = model.Language

// Registry maps a supported language to its sandbox specification.
var Registry = map[Language]*LanguageSpec{
	model.LanguagePython: {
		Language:       model.LanguagePython,
		Image:          "python:3.11-alpine",
		FileName:       "solution.py",
		FileExt:        ".py",
		MemoryLimit:    "128m",
		CPUQuota:       "0.5",
		PidsLimit:      64,
		DefaultTimeout: 5 * time.Second,
		MaxTimeout:     time.Duration(model.MaxTimeoutSeconds) * time.Second,
		BuildArgs: func(workdir string) []string {
			return []string{"python", workdir + "/solution.py"}
		},
	},
	model.LanguageJava: {
		Language:       model.LanguageJava,
		Image:          "eclipse-temurin:17-jdk-alpine",
		FileName:       "Main.java",
		FileExt:        ".java",
		MemoryLimit:    "256m",
		CPUQuota:       "0.5",
		PidsLimit:      96,
		DefaultTimeout: 10 * time.Second,
		MaxTimeout:     time.Duration(model.MaxTimeoutSeconds) * time.Second,
		BuildArgs: func(workdir string) []string {
			// Compile into the writable tmpfs, then run the Main driver class.
			// The workdir mount is read-only, so javac output cannot land there.
			return []string{"sh", "-c", "javac -d /tmp " + workdir + "/Main.java && java -Xmx128m -cp /tmp Main"}
		},
	},
}

// Lookup returns the LanguageSpec for lang, or false if unsupported.
func Lookup(lang Language) (*LanguageSpec, bool) {
	spec, ok := Registry[lang]
	return spec, ok
}

// Supported returns the list of languages this sandbox can run, in a stable
// order suitable for the /languages endpoint.
func Supported() []Language {
	return []Language{model.LanguagePython, model.LanguageJava}
}
