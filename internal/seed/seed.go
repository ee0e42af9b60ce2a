// Package seed loads a YAML source list for bulk registration.
package seed

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrNoSources = errors.New("seed: at least one source is required")

type Entry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type file struct {
	Sources []Entry `yaml:"sources"`
}

// Load reads and validates a source list file of the form:
//
//	sources:
//	  - name: BBC News
//	    url: https://feeds.bbci.co.uk/news/rss.xml
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", path, err)
	}
	if len(f.Sources) == 0 {
		return nil, ErrNoSources
	}
	for i, e := range f.Sources {
		if e.Name == "" {
			return nil, fmt.Errorf("seed: source %d: name is required", i+1)
		}
		if e.URL == "" {
			return nil, fmt.Errorf("seed: source %d (%s): url is required", i+1, e.Name)
		}
	}
	return f.Sources, nil
}
