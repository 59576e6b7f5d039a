// Command presetlint checks preset catalog files for authoring defects
// before deploy: unknown variable types, bad patch paths, contradictory
// compiler rules, duplicate ids.
package main

import (
	"flag"
	"fmt"
	"os"

	"server/internal/domain"
	"server/internal/preset"
)

type finding struct {
	source   string
	presetID string
	message  string
}

func main() {
	builtins := flag.Bool("builtins", false, "also lint the embedded preset catalog")
	flag.Parse()

	targets := flag.Args()
	if len(targets) == 0 && !*builtins {
		fmt.Fprintln(os.Stderr, "usage: presetlint [-builtins] [catalog.yaml|dir ...]")
		os.Exit(2)
	}

	var findings []finding
	seen := map[string]string{}

	check := func(source string, presets []domain.Preset) {
		for i := range presets {
			p := &presets[i]
			id := p.ID
			if id == "" {
				id = fmt.Sprintf("(preset #%d)", i+1)
			}
			if prev, dup := seen[p.ID]; dup && p.ID != "" {
				findings = append(findings, finding{source, id, "duplicate preset id, first declared in " + prev})
			} else if p.ID != "" {
				seen[p.ID] = source
			}
			for _, msg := range preset.Lint(p) {
				findings = append(findings, finding{source, id, msg})
			}
		}
	}

	if *builtins {
		check("builtin", preset.BuiltinCatalog())
	}
	for _, target := range targets {
		presets, err := preset.LoadPath(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "presetlint: %v\n", err)
			os.Exit(1)
		}
		check(target, presets)
	}

	if len(findings) == 0 {
		fmt.Printf("presetlint: %d preset(s) clean\n", len(seen))
		return
	}
	for _, f := range findings {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", f.source, f.presetID, f.message)
	}
	os.Exit(1)
}
