// Package advice carries one-line remediation hints for the lock modes that
// commonly show up in contention reports.
package advice

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed advice.yaml
var adviceYAML []byte

// Table maps lock mode names, as dumped, to contention hints.
type Table struct {
	hints map[string]string
}

type yamlRoot struct {
	Hints []hintDef `yaml:"hints"`
}

type hintDef struct {
	Mode string `yaml:"mode"`
	Hint string `yaml:"hint"`
}

// Load parses the embedded hint table.
func Load() (*Table, error) {
	var root yamlRoot
	if err := yaml.Unmarshal(adviceYAML, &root); err != nil {
		return nil, fmt.Errorf("parsing embedded advice table: %w", err)
	}

	t := &Table{hints: make(map[string]string, len(root.Hints))}
	for _, h := range root.Hints {
		t.hints[h.Mode] = h.Hint
	}
	return t, nil
}

// Hint returns the hint for a lock mode. Lookup is case-sensitive on the
// mode string exactly as the dump prints it; unknown modes return ok=false.
func (t *Table) Hint(mode string) (string, bool) {
	h, ok := t.hints[mode]
	return h, ok
}
