package config

import (
	"embed"
	"fmt"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// Template returns the embedded panel schema template called name.
func Template(name string) ([]byte, error) {
	data, err := templateFS.ReadFile("templates/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}
	return data, nil
}
