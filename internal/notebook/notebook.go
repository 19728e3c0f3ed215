// Package notebook runs YAML notebook documents cell by cell against a
// persistent session.
package notebook

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Cell struct {
	ID     string `yaml:"id,omitempty"`
	Source string `yaml:"source"`
}

// Notebook is the on-disk document:
//
//	title: demo
//	cells:
//	  - id: setup
//	    source: let x = 1
type Notebook struct {
	Title string `yaml:"title,omitempty"`
	Cells []Cell `yaml:"cells"`
	Path  string `yaml:"-"`
}

func Load(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading notebook %s: %w", path, err)
	}
	nb, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	nb.Path = path
	return nb, nil
}

// Parse decodes a notebook. Cells without an id get a generated one;
// duplicate ids are rejected.
func Parse(data []byte, path string) (*Notebook, error) {
	var nb Notebook
	if err := yaml.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("parsing notebook %s: %w", path, err)
	}
	seen := make(map[string]bool, len(nb.Cells))
	for i := range nb.Cells {
		if nb.Cells[i].ID == "" {
			nb.Cells[i].ID = uuid.NewString()
		}
		if seen[nb.Cells[i].ID] {
			return nil, fmt.Errorf("%s: duplicate cell id %q", path, nb.Cells[i].ID)
		}
		seen[nb.Cells[i].ID] = true
	}
	if nb.Title == "" {
		nb.Title = path
	}
	return &nb, nil
}

func (nb *Notebook) Marshal() ([]byte, error) {
	return yaml.Marshal(nb)
}
