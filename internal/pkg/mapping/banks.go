// Package mapping holds the editable lookup tables that turn scraped labels
// into canonical bank names and tenors. The tables ship as embedded YAML and
// can be swapped for external files, since they need tuning whenever the
// source page picks up a new bank or spelling variant.
package mapping

import (
	"fmt"
	"os"
	"strings"

	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed data/banks.yaml
var defaultBankTable []byte

type bankTable struct {
	Prefixes []string          `yaml:"prefixes"`
	Suffixes []string          `yaml:"suffixes"`
	Aliases  map[string]string `yaml:"aliases"`
}

// Normalizer maps raw bank labels to canonical bank names. Unknown labels
// pass through after cleanup; only an empty input yields an empty result,
// which callers must treat as "no bank context, skip the row".
type Normalizer struct {
	prefixes []string
	suffixes []string
	aliases  map[string]string
}

// LoadNormalizer builds a Normalizer from the YAML table at path, or from the
// embedded default table when path is empty.
func LoadNormalizer(path string) (*Normalizer, error) {
	raw := defaultBankTable
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read bank table: %w", err)
		}
	}

	var table bankTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to parse bank table: %w", err)
	}

	aliases := make(map[string]string, len(table.Aliases))
	for label, canonical := range table.Aliases {
		if strings.TrimSpace(canonical) == "" {
			return nil, fmt.Errorf("bank table alias %q maps to an empty name", label)
		}
		aliases[strings.ToLower(strings.TrimSpace(label))] = canonical
	}

	return &Normalizer{
		prefixes: lowered(table.Prefixes),
		suffixes: lowered(table.Suffixes),
		aliases:  aliases,
	}, nil
}

// Normalize cleans a scraped bank label and resolves it to its canonical
// name. An exact alias match wins before cleanup so that table entries like
// "Bank of New Zealand" are never mangled by the suffix rules; otherwise at
// most one known prefix and one known suffix are stripped, case-insensitively.
// Already-canonical names come back unchanged.
func (n *Normalizer) Normalize(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}
	if canonical, ok := n.aliases[strings.ToLower(name)]; ok {
		return canonical
	}

	lower := strings.ToLower(name)
	for _, p := range n.prefixes {
		if strings.HasPrefix(lower, p) {
			name = strings.TrimSpace(name[len(p):])
			lower = strings.ToLower(name)
			break
		}
	}
	for _, s := range n.suffixes {
		if strings.HasSuffix(lower, s) {
			name = strings.TrimSpace(name[:len(name)-len(s)])
			lower = strings.ToLower(name)
			break
		}
	}

	if canonical, ok := n.aliases[lower]; ok {
		return canonical
	}
	return name
}

func lowered(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
