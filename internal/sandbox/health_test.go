package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestProfilesMatchSupportedOrder(t *testing.T) {
	langs := Supported()
	profiles := Profiles()

	if len(profiles) != len(langs) {
		t.Fatalf("got %d profiles, want %d", len(profiles), len(langs))
	}
	for i, lang := range langs {
		if profiles[i].Language != string(lang) {
			t.Errorf("profile %d language = %s, want %s", i, profiles[i].Language, lang)
		}
	}
}

func TestProfilesCarryRegistryValues(t *testing.T) {
	for _, lang := range Supported() {
		spec, ok := Lookup(lang)
		if !ok {
			t.Fatalf("%s: not registered", lang)
		}

		var found *LanguageProfile
		for i, p := range Profiles() {
			if p.Language == string(lang) {
				found = &Profiles()[i]
				break
			}
		}
		if found == nil {
			t.Fatalf("%s: no matching profile", lang)
		}
		if found.MemoryLimit != spec.MemoryLimit {
			t.Errorf("%s: memory limit = %s, want %s", lang, found.MemoryLimit, spec.MemoryLimit)
		}
		if found.CPUQuota != spec.CPUQuota {
			t.Errorf("%s: cpu quota = %s, want %s", lang, found.CPUQuota, spec.CPUQuota)
		}
		if found.DefaultTimeout != spec.DefaultTimeout.String() {
			t.Errorf("%s: default timeout = %s, want %s", lang, found.DefaultTimeout, spec.DefaultTimeout.String())
		}
		if found.MaxTimeout != spec.MaxTimeout.String() {
			t.Errorf("%s: max timeout = %s, want %s", lang, found.MaxTimeout, spec.MaxTimeout.String())
		}
	}
}

func newTestService(allowedPaths []string) *Service {
	log := logrus.NewEntry(logrus.New())
	return &Service{
		runner: &Runner{
			security: &SecurityChecker{allowedPaths: allowedPaths},
			log:      log,
		},
		log: log,
	}
}

func TestDockerAvailableFalseWhenBinaryNotResolvable(t *testing.T) {
	svc := newTestService([]string{t.TempDir()})

	if svc.DockerAvailable() {
		t.Error("expected DockerAvailable to be false when no directory contains docker")
	}
}

func TestDockerAvailableFalseWhenBinaryWorldWritable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docker")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0777); err != nil {
		t.Fatal(err)
	}
	// WriteFile's mode is masked by the process umask; set it explicitly.
	if err := os.Chmod(path, 0777); err != nil {
		t.Fatal(err)
	}

	svc := newTestService([]string{dir})

	if svc.DockerAvailable() {
		t.Error("expected DockerAvailable to be false for a world-writable binary")
	}
}

func TestDockerAvailableTrueWhenBinaryResolvesAndVerifies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docker")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	svc := newTestService([]string{dir})

	if !svc.DockerAvailable() {
		t.Error("expected DockerAvailable to be true for a resolvable, non-world-writable binary")
	}
}
