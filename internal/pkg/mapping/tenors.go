package mapping

import (
	"errors"
	"fmt"
	"os"
	"strings"

	_ "embed"

	"github.com/ymakhloufi/kiwi-rates/internal/pkg/model"
	"gopkg.in/yaml.v3"
)

//go:embed data/tenors.yaml
var defaultTenorTable []byte

// ErrUnknownTenor marks a tenor label with no entry in the lookup table.
// Callers log a warning and drop the observation; it is never fatal.
var ErrUnknownTenor = errors.New("unknown tenor label")

type tenorEntry struct {
	Name   string   `yaml:"name"`
	Months int      `yaml:"months"`
	Labels []string `yaml:"labels"`
}

type tenorTable struct {
	Tenors  []tenorEntry `yaml:"tenors"`
	Columns []string     `yaml:"columns"`
}

// Resolver maps tenor label spellings to the canonical tenor set. It also
// carries the page's column layout, which is tenor data of the same kind.
type Resolver struct {
	byLabel map[string]model.CanonicalTenor
	columns []string
}

// LoadResolver builds a Resolver from the YAML table at path, or from the
// embedded default table when path is empty.
func LoadResolver(path string) (*Resolver, error) {
	raw := defaultTenorTable
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read tenor table: %w", err)
		}
	}

	var table tenorTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to parse tenor table: %w", err)
	}

	byLabel := make(map[string]model.CanonicalTenor)
	for _, entry := range table.Tenors {
		if entry.Name == "" {
			return nil, fmt.Errorf("tenor table entry with empty name")
		}
		if entry.Months < 0 {
			return nil, fmt.Errorf("tenor %q has negative months", entry.Name)
		}
		tenor := model.CanonicalTenor{Name: entry.Name, Months: entry.Months}
		for _, label := range entry.Labels {
			key := strings.ToLower(strings.TrimSpace(label))
			if existing, ok := byLabel[key]; ok && existing != tenor {
				return nil, fmt.Errorf("tenor label %q maps to both %q and %q", label, existing.Name, tenor.Name)
			}
			byLabel[key] = tenor
		}
		// the canonical name itself always resolves
		byLabel[strings.ToLower(entry.Name)] = tenor
	}

	r := &Resolver{byLabel: byLabel, columns: table.Columns}
	for _, column := range table.Columns {
		if _, err := r.Resolve(column); err != nil {
			return nil, fmt.Errorf("column layout references unknown tenor %q", column)
		}
	}
	return r, nil
}

// Resolve exact-matches a label (trimmed, case-insensitive) against every
// known spelling variant.
func (r *Resolver) Resolve(label string) (model.CanonicalTenor, error) {
	tenor, ok := r.byLabel[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return model.CanonicalTenor{}, fmt.Errorf("%w: %q", ErrUnknownTenor, label)
	}
	return tenor, nil
}

// Columns returns the left-to-right tenor order of the page's rate columns.
func (r *Resolver) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}
