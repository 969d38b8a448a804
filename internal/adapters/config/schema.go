package config

// Slabfile represents the structure of the slab.yaml configuration file.
type Slabfile struct {
	Version     string   `yaml:"version"`
	Recipe      string   `yaml:"recipe"`
	Context     string   `yaml:"context"`
	Image       ImageDTO `yaml:"image"`
	Cache       CacheDTO `yaml:"cache"`
	StepTimeout string   `yaml:"stepTimeout"`
}

// ImageDTO is the image metadata section of the configuration.
type ImageDTO struct {
	Workdir    string            `yaml:"workdir"`
	Entrypoint []string          `yaml:"entrypoint"`
	Env        map[string]string `yaml:"env"`
}

// CacheDTO is the cache policy section of the configuration.
type CacheDTO struct {
	// RunSteps controls whether RUN instructions are served from cache:
	// "enabled" (default) or "disabled".
	RunSteps string `yaml:"runSteps"`
}
