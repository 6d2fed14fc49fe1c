// Package harness runs translation scenarios: YAML files naming a program
// fixture and a list of (clause, version, mode) steps, with golden-file
// comparison of the rendered operation trees.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quarrylang/quarry/internal/ast2ram"
	"github.com/quarrylang/quarry/internal/compiler"
	"github.com/quarrylang/quarry/internal/ram"
	"github.com/quarrylang/quarry/internal/symtab"
)

// Scenario defines one translation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario covers.
	Description string `yaml:"description,omitempty"`

	// Fixture is the path to the CUE program fixture, relative to the
	// scenario file location.
	Fixture string `yaml:"fixture"`

	// Steps lists the clause translations to run, in order.
	Steps []Step `yaml:"steps"`

	// baseDir is the directory of the scenario file, for resolving Fixture.
	baseDir string
}

// Step selects one (clause, version, mode) translation.
type Step struct {
	Clause     int  `yaml:"clause"`
	Version    int  `yaml:"version,omitempty"`
	Provenance bool `yaml:"provenance,omitempty"`
}

// TreeSnapshot captures one translated tree for comparison.
type TreeSnapshot struct {
	Step        Step
	Rendered    string
	Fingerprint string
}

// Result holds the outcome of running a scenario.
type Result struct {
	Scenario *Scenario
	Trees    []TreeSnapshot
}

// LoadScenario reads and validates a scenario YAML file.
// Unknown fields are rejected to catch typos in scenario files.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}

	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Fixture == "" {
		return nil, fmt.Errorf("scenario %s: fixture is required", path)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: at least one step is required", path)
	}

	s.baseDir = filepath.Dir(path)
	return &s, nil
}

// Run loads the scenario's fixture and translates every step.
func Run(scenario *Scenario) (*Result, error) {
	prog, err := compiler.LoadFile(filepath.Join(scenario.baseDir, scenario.Fixture))
	if err != nil {
		return nil, err
	}
	ctx := prog.Context()

	// One shared symbol table per scenario keeps interned indices stable
	// across steps, mirroring a whole-program compilation.
	symbols := symtab.New()
	plain := ast2ram.NewClauseTranslator(ctx, symbols)
	provenance := ast2ram.NewProvenanceClauseTranslator(ctx, symbols)

	result := &Result{Scenario: scenario}
	for i, step := range scenario.Steps {
		if step.Clause < 0 || step.Clause >= len(prog.Clauses) {
			return nil, fmt.Errorf("scenario %s: step %d: clause %d out of range (%d clauses)",
				scenario.Name, i, step.Clause, len(prog.Clauses))
		}

		translator := plain
		if step.Provenance {
			translator = provenance
		}
		query := translator.TranslateClause(prog.Clauses[step.Clause], step.Version)

		fingerprint, err := ram.Fingerprint(query)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: step %d: %w", scenario.Name, i, err)
		}
		result.Trees = append(result.Trees, TreeSnapshot{
			Step:        step,
			Rendered:    ram.Render(query),
			Fingerprint: fingerprint,
		})
	}

	return result, nil
}

// Transcript renders the result as one deterministic text blob, suitable
// for golden-file comparison.
func (r *Result) Transcript() string {
	var b strings.Builder
	for _, tree := range r.Trees {
		fmt.Fprintf(&b, "== clause %d version %d provenance %t\n",
			tree.Step.Clause, tree.Step.Version, tree.Step.Provenance)
		b.WriteString(tree.Rendered)
	}
	return b.String()
}
