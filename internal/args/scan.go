package args

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type scanState int

const (
	// scanningOptions interprets each token as a possible wrapper option.
	scanningOptions scanState = iota
	// forwardingRunArgs copies every remaining token to RunArgs untouched.
	forwardingRunArgs
)

// valueOption is an option that takes a value and may appear at most once.
type valueOption struct {
	name         string
	slot         func(*Args) *slot[string]
	canonicalize bool
}

var valueOptions = []valueOption{
	{name: "--bin", slot: func(a *Args) *slot[string] { return &a.binName }},
	{name: "--target", slot: func(a *Args) *slot[string] { return &a.target }},
	{name: "--manifest-path", slot: func(a *Args) *slot[string] { return &a.manifestPath }, canonicalize: true},
}

type scanner struct {
	tokens []string
	pos    int
	state  scanState
	args   *Args
}

// ParseBuild parses the tokens that follow the build, run, or test
// subcommand. The result is BuildHelp, Version, or Build.
func ParseBuild(tokens []string) (Command, error) {
	s := &scanner{
		tokens: tokens,
		args: &Args{
			CargoArgs: []string{},
			RunArgs:   []string{},
		},
	}

	for s.pos < len(s.tokens) {
		tok := s.advance()
		if s.state == forwardingRunArgs {
			s.args.RunArgs = append(s.args.RunArgs, tok)
			continue
		}
		kind, stop, err := s.scanOption(tok)
		if err != nil {
			return Command{}, err
		}
		if stop {
			return Command{Kind: kind}, nil
		}
	}

	return Command{Kind: Build, Args: s.args}, nil
}

func (s *scanner) advance() string {
	tok := s.tokens[s.pos]
	s.pos++
	return tok
}

func (s *scanner) exhausted() bool {
	return s.pos >= len(s.tokens)
}

// scanOption handles one token in the scanningOptions state. stop reports
// that parsing is over and kind is the short-circuit result.
func (s *scanner) scanOption(tok string) (kind Kind, stop bool, err error) {
	switch tok {
	case "--help", "-h":
		return BuildHelp, true, nil
	case "--version":
		return Version, true, nil
	case "--release":
		s.args.release = true
		s.args.CargoArgs = append(s.args.CargoArgs, tok)
		return 0, false, nil
	case "--":
		s.state = forwardingRunArgs
		return 0, false, nil
	}

	for _, opt := range valueOptions {
		if tok == opt.name {
			return 0, false, s.separateValue(opt)
		}
		if value, ok := strings.CutPrefix(tok, opt.name+"="); ok {
			if err := s.record(opt, value); err != nil {
				return 0, false, err
			}
			s.args.CargoArgs = append(s.args.CargoArgs, tok)
			return 0, false, nil
		}
	}

	s.args.CargoArgs = append(s.args.CargoArgs, tok)
	return 0, false, nil
}

// separateValue handles the `--opt value` form. A trailing flag with no
// value leaves the slot empty but still counts against duplicates.
func (s *scanner) separateValue(opt valueOption) error {
	if s.exhausted() {
		if opt.slot(s.args).set {
			return &OptionError{Option: opt.name, Err: ErrDuplicateOption}
		}
		s.args.CargoArgs = append(s.args.CargoArgs, opt.name)
		return nil
	}

	value := s.advance()
	if err := s.record(opt, value); err != nil {
		return err
	}
	s.args.CargoArgs = append(s.args.CargoArgs, opt.name, value)
	return nil
}

func (s *scanner) record(opt valueOption, value string) error {
	stored := value
	if opt.canonicalize {
		path, err := canonicalize(value)
		if err != nil {
			return &OptionError{Option: opt.name, Value: value, Err: fmt.Errorf("%w: %v", ErrInvalidPath, err)}
		}
		stored = path
	}
	if err := opt.slot(s.args).put(stored); err != nil {
		return &OptionError{Option: opt.name, Value: value, Err: ErrDuplicateOption}
	}
	return nil
}

// canonicalize returns the absolute, symlink-free form of an existing path.
func canonicalize(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
