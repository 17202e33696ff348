// Package rangegen generates Go functions that test UTF-16 code units
// against character classes. The generated functions walk a precomputed
// range tree, so they behave like regast.Matcher without building it at run
// time.
package rangegen

import (
	"fmt"
	"go/token"
	"io"

	"github.com/auvred/regast"
	"github.com/dave/jennifer/jen"
	"gopkg.in/yaml.v2"
)

// Class is one generated function.
type Class struct {
	// Name of the generated function. The tree is stored in Name+"Tree".
	Name string `yaml:"name"`
	// A pattern consisting of a single character class, e.g. `[\p{L}_$]`.
	Pattern string `yaml:"pattern"`
	// Pattern flags, e.g. "ui".
	Flags string `yaml:"flags"`
}

// Config is the YAML input of cmd/rangegen.
type Config struct {
	Package string  `yaml:"package"`
	Classes []Class `yaml:"classes"`
}

func LoadConfig(r io.Reader) (Config, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(src, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Package == "" {
		return Config{}, fmt.Errorf("config: package is required")
	}
	return cfg, nil
}

// Matcher compiles the class to the matcher the generated function mirrors.
// Code points above U+FFFF are dropped.
func (c Class) Matcher() (*regast.Matcher, error) {
	flags, err := regast.ParseFlags(c.Flags)
	if err != nil {
		return nil, err
	}
	set, err := regast.ClassSet(c.Pattern, flags)
	if err != nil {
		return nil, err
	}
	return regast.NewMatcherBuilder(set).Build(), nil
}

// Generate returns a file in package pkg with one function per class.
func Generate(pkg string, classes []Class) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by rangegen. DO NOT EDIT.")
	seen := map[string]bool{}
	for _, c := range classes {
		if !token.IsIdentifier(c.Name) {
			return nil, fmt.Errorf("class %q: invalid function name", c.Name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("class %q: duplicate name", c.Name)
		}
		seen[c.Name] = true
		m, err := c.Matcher()
		if err != nil {
			return nil, fmt.Errorf("class %q: %w", c.Name, err)
		}
		genClass(f, c, m)
	}
	return f, nil
}

func genClass(f *jen.File, c Class, m *regast.Matcher) {
	treeName := c.Name + "Tree"
	tree := m.Tree()
	values := make([]jen.Code, len(tree))
	for i, u := range tree {
		values[i] = jen.Lit(int(u))
	}
	f.Var().Id(treeName).Op("=").Index(jen.Op("...")).Uint16().Values(values...)

	invert := m.Inverted()
	f.Commentf("%s reports whether c is matched by /%s/%s.", c.Name, c.Pattern, c.Flags)
	f.Func().Id(c.Name).Params(jen.Id("c").Uint16()).Bool().Block(
		jen.Id("i").Op(":=").Lit(0),
		jen.For(jen.Id("i").Op("<").Len(jen.Id(treeName))).Block(
			jen.If(jen.Id(treeName).Index(jen.Id("i")).Op("<=").Id("c")).Block(
				jen.If(jen.Id(treeName).Index(jen.Id("i").Op("+").Lit(1)).Op(">=").Id("c")).Block(
					jen.Return(jen.Lit(!invert)),
				),
				jen.Id("i").Op("=").Id("i").Op("*").Lit(2).Op("+").Lit(4),
			).Else().Block(
				jen.Id("i").Op("=").Id("i").Op("*").Lit(2).Op("+").Lit(2),
			),
		),
		jen.Return(jen.Lit(invert)),
	)
}
