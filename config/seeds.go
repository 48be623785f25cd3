package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile lists catalog sections to crawl.
type SeedFile struct {
	Origin   string `yaml:"origin"`
	PageSize int    `yaml:"page_size"`
	Sections []struct {
		Name string `yaml:"name"`
		URL  string `yaml:"url"`
	} `yaml:"sections"`
}

// LoadSeedFile reads a YAML seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seeds SeedFile
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(seeds.Sections) == 0 {
		return nil, fmt.Errorf("seed file %s lists no sections", path)
	}
	for i, section := range seeds.Sections {
		if section.URL == "" {
			return nil, fmt.Errorf("seed file section %d (%s) has no url", i, section.Name)
		}
	}
	return &seeds, nil
}

// Apply replaces the configured seeds, and the origin and page size when the
// file sets them.
func (s *SeedFile) Apply(cfg *Config) {
	seeds := make([]string, 0, len(s.Sections))
	for _, section := range s.Sections {
		seeds = append(seeds, section.URL)
	}
	cfg.Seeds = seeds
	if s.Origin != "" {
		cfg.SiteOrigin = s.Origin
	}
	if s.PageSize > 0 {
		cfg.PageSize = s.PageSize
	}
}
