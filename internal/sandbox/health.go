package sandbox

// LanguageProfile summarizes one supported language's resource envelope for
// the /languages endpoint. The original Python executors each expose a
// health_check() with this detail; spec §6 only requires the language tag,
// but nothing excludes surfacing the rest, so we carry it through.
type LanguageProfile struct {
	Language       string `json:"language"`
	MemoryLimit    string `json:"memory_limit"`
	CPUQuota       string `json:"cpu_quota"`
	DefaultTimeout string `json:"default_timeout"`
	MaxTimeout     string `json:"max_timeout"`
}

// Profiles returns one LanguageProfile per supported language, in the same
// stable order as Supported().
func Profiles() []LanguageProfile {
	langs := Supported()
	profiles := make([]LanguageProfile, 0, len(langs))
	for _, lang := range langs {
		spec := Registry[lang]
		profiles = append(profiles, LanguageProfile{
			Language:       string(spec.Language),
			MemoryLimit:    spec.MemoryLimit,
			CPUQuota:       spec.CPUQuota,
			DefaultTimeout: spec.DefaultTimeout.String(),
			MaxTimeout:     spec.MaxTimeout.String(),
		})
	}
	return profiles
}

// DockerAvailable reports whether the container runtime binary can be
// resolved and passes verification. It never launches a container; it is
// a cheap readiness probe for the /health endpoint.
func (s *Service) DockerAvailable() bool {
	bin, err := s.runner.security.ResolveBinary("docker")
	if err != nil {
		return false
	}
	return s.runner.security.VerifyBinary(bin) == nil
}
