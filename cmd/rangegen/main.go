// Command rangegen generates range-tree matcher functions from a YAML list of
// character classes, or prints the parsed tree of a pattern.
//
//	rangegen -config classes.yaml -out classes_gen.go
//	rangegen -dump '[\u{1F600}]' -flags u
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/auvred/regast"
	"github.com/auvred/regast/rangegen"
)

var (
	configPath = flag.String("config", "", "YAML file listing the classes to generate")
	outPath    = flag.String("out", "", "Output Go file (default: stdout)")
	dump       = flag.String("dump", "", "Pattern whose parsed tree is printed instead of generating code")
	flagsStr   = flag.String("flags", "", "Flags for -dump, e.g. \"ui\"")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "rangegen:", err)
		os.Exit(1)
	}
}

func run() error {
	if *dump != "" {
		return runDump(*dump, *flagsStr)
	}
	if *configPath == "" {
		flag.Usage()
		return fmt.Errorf("-config is required")
	}
	f, err := os.Open(*configPath)
	if err != nil {
		return err
	}
	defer f.Close()
	cfg, err := rangegen.LoadConfig(f)
	if err != nil {
		return err
	}
	file, err := rangegen.Generate(cfg.Package, cfg.Classes)
	if err != nil {
		return err
	}
	if *outPath == "" {
		return file.Render(os.Stdout)
	}
	return file.Save(*outPath)
}

func runDump(pattern, flagsStr string) error {
	flags, err := regast.ParseFlags(flagsStr)
	if err != nil {
		return err
	}
	ast, err := regast.Parse(pattern, flags)
	if err != nil {
		return err
	}
	fmt.Println(ast)
	fmt.Println("properties:", ast.Properties())
	fmt.Println("capture groups:", ast.NumberOfCaptureGroups())
	fmt.Println("nodes:", ast.NumberOfNodes())
	if p := ast.Prefix(); !p.IsEmpty() {
		fmt.Println("prefix literals:", len(p.Literals))
	}
	return nil
}
