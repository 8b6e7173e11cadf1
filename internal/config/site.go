package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Site is the static profile behind the home, about and projects pages:
// everything on the site that is not user-generated.
type Site struct {
	Owner    string    `yaml:"owner" json:"owner"`
	Tagline  string    `yaml:"tagline" json:"tagline"`
	About    []string  `yaml:"about" json:"about"`
	Projects []Project `yaml:"projects" json:"projects"`
}

type Project struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Tech        []string `yaml:"tech" json:"tech"`
	Link        string   `yaml:"link" json:"link,omitempty"`
}

func LoadSite(path string) (*Site, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}
	var site Site
	if err := yaml.Unmarshal(raw, &site); err != nil {
		return nil, fmt.Errorf("parse site config: %w", err)
	}
	return &site, nil
}
