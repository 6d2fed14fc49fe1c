package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrylang/quarry/internal/ast2ram"
	"github.com/quarrylang/quarry/internal/catalog"
	"github.com/quarrylang/quarry/internal/compiler"
	"github.com/quarrylang/quarry/internal/ram"
	"github.com/quarrylang/quarry/internal/symtab"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Clause     int    // clause index within the fixture, -1 = all
	Version    int    // semi-naive version
	Provenance bool   // use the provenance translator
	Catalog    string // optional catalog database overriding fixture relations
}

// translateResult is the JSON output shape for one translated clause.
type translateResult struct {
	Clause      int            `json:"clause"`
	Version     int            `json:"version"`
	Provenance  bool           `json:"provenance"`
	Fingerprint string         `json:"fingerprint"`
	Tree        map[string]any `json:"tree"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <fixture.cue>",
		Short: "Lower fixture clauses to operation trees",
		Long: `Load a program fixture, translate its clauses, and print the
resulting operation trees. The fixture declares relations and clauses in
structural CUE; relation declarations can instead come from a catalog
database via --catalog.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Clause, "clause", -1, "clause index to translate (default: all)")
	cmd.Flags().IntVar(&opts.Version, "version", 0, "semi-naive version for recursive rules")
	cmd.Flags().BoolVar(&opts.Provenance, "provenance", false, "use the provenance translator")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog database path overriding fixture relations")

	return cmd
}

func runTranslate(opts *TranslateOptions, fixturePath string, cmd *cobra.Command) error {
	prog, err := compiler.LoadFile(fixturePath)
	if err != nil {
		return err
	}

	var ctx ast2ram.Context = prog.Context()
	if opts.Catalog != "" {
		cat, err := catalog.Open(opts.Catalog)
		if err != nil {
			return err
		}
		defer cat.Close()
		ctx = cat
	}

	symbols := symtab.New()
	var translator *ast2ram.ClauseTranslator
	if opts.Provenance {
		translator = ast2ram.NewProvenanceClauseTranslator(ctx, symbols)
	} else {
		translator = ast2ram.NewClauseTranslator(ctx, symbols)
	}

	if opts.Clause >= len(prog.Clauses) {
		return fmt.Errorf("clause index %d out of range: fixture has %d clauses",
			opts.Clause, len(prog.Clauses))
	}

	out := cmd.OutOrStdout()
	for i, clause := range prog.Clauses {
		if opts.Clause >= 0 && i != opts.Clause {
			continue
		}

		// Versions only apply to recursive rules; facts and non-recursive
		// rules translate once. Out-of-range versions on recursive rules
		// are user input here, so they fail as errors, not panics.
		version := opts.Version
		if version < 0 {
			return fmt.Errorf("version %d must be non-negative", version)
		}
		switch n := translator.VersionCount(clause); {
		case n == 0:
			version = 0
		case version >= n:
			return fmt.Errorf("clause %d: version %d out of range: clause has %d versions",
				i, version, n)
		}

		if opts.Verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "translating clause %d version %d\n", i, version)
		}

		query := translator.TranslateClause(clause, version)

		switch opts.Format {
		case "json":
			fingerprint, err := ram.Fingerprint(query)
			if err != nil {
				return err
			}
			result := translateResult{
				Clause:      i,
				Version:     version,
				Provenance:  opts.Provenance,
				Fingerprint: fingerprint,
				Tree:        ram.CanonicalMap(query),
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
		default:
			fmt.Fprintf(out, "-- clause %d\n%s", i, ram.Render(query))
		}
	}

	return nil
}
