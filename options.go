package regast

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// Options tunes tree construction. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// Counted repetitions with a bound above this value are not unrolled.
	// The tree is left incomplete and HasLargeCountedRepetitions is set,
	// so the executor has to fall back to counted-loop execution.
	MaxCountedRepetition int `yaml:"max_counted_repetition"`

	// Maximum length of a literal prefix, in code units.
	MaxPrefixLength int `yaml:"max_prefix_length"`
	// Maximum number of alternative literal prefixes.
	MaxPrefixLiterals int `yaml:"max_prefix_literals"`
	// Character classes with more code units than this end prefix extraction.
	MaxPrefixClassSize int `yaml:"max_prefix_class_size"`
}

// DefaultOptions returns the options used by Parse.
func DefaultOptions() Options {
	return Options{
		MaxCountedRepetition: 40,
		MaxPrefixLength:      16,
		MaxPrefixLiterals:    64,
		MaxPrefixClassSize:   8,
	}
}

// LoadOptions decodes YAML options from r. Keys missing from the document keep
// their default value.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	src, err := io.ReadAll(r)
	if err != nil {
		return Options{}, fmt.Errorf("reading options: %w", err)
	}
	if err := yaml.UnmarshalStrict(src, &opts); err != nil {
		return Options{}, fmt.Errorf("decoding options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

var errNegativeOption = errors.New("must not be negative")

func (o Options) Validate() error {
	check := func(name string, v int) error {
		if v < 0 {
			return fmt.Errorf("option %s: %w", name, errNegativeOption)
		}
		return nil
	}
	return errors.Join(
		check("max_counted_repetition", o.MaxCountedRepetition),
		check("max_prefix_length", o.MaxPrefixLength),
		check("max_prefix_literals", o.MaxPrefixLiterals),
		check("max_prefix_class_size", o.MaxPrefixClassSize),
	)
}
