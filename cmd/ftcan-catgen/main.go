// Command ftcan-catgen generates the built-in DataID table of pkg/catalog
// from dataids.yaml.
//
// Usage:
//
//	ftcan-catgen -input dataids.yaml -output catalog_gen.go [-package catalog]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"

	"github.com/ftcan-dash/ftcan-go/pkg/catalog"
)

func main() {
	input := flag.String("input", "", "Path to dataids.yaml")
	output := flag.String("output", "", "Output path of the generated Go file")
	pkg := flag.String("package", "catalog", "Package name of the generated file")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "Usage: ftcan-catgen -input <dataids.yaml> -output <file.go> [-package <name>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*input, *output, *pkg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output, pkg string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}
	entries, err := catalog.ParseYAML(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", input, err)
	}

	code, err := Generate(pkg, filepath.Base(input), entries)
	if err != nil {
		return err
	}
	if err := writeFormatted(output, code); err != nil {
		return err
	}
	fmt.Printf("  generated %s (%d DataIDs)\n", output, len(entries))
	return nil
}

// writeFormatted formats Go source code with goimports and writes it to a file.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Write unformatted so you can debug the generator output
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}
