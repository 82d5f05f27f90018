// Package args classifies the bootimage command line and extracts the few
// cargo options the wrapper itself needs, forwarding everything else.
package args

import "fmt"

// Kind identifies which Command variant was parsed.
type Kind int

const (
	NoSubcommand Kind = iota
	Build
	Run
	Test
	BuildHelp
	RunHelp
	TestHelp
	Help
	Version
)

func (k Kind) String() string {
	switch k {
	case NoSubcommand:
		return "no-subcommand"
	case Build:
		return "build"
	case Run:
		return "run"
	case Test:
		return "test"
	case BuildHelp:
		return "build-help"
	case RunHelp:
		return "run-help"
	case TestHelp:
		return "test-help"
	case Help:
		return "help"
	case Version:
		return "version"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Command is the outcome of parsing the full argument vector. Args is set
// only for Build, Run, and Test.
type Command struct {
	Kind Kind
	Args *Args
}

// Parse classifies argv (without the program name) by its first element.
func Parse(argv []string) (Command, error) {
	if len(argv) == 0 {
		return Command{Kind: NoSubcommand}, nil
	}

	rest := argv[1:]
	switch argv[0] {
	case "build":
		return ParseBuild(rest)
	case "run":
		cmd, err := ParseBuild(rest)
		if err != nil {
			return Command{}, err
		}
		return remap(cmd, Run, RunHelp), nil
	case "test":
		cmd, err := ParseBuild(rest)
		if err != nil {
			return Command{}, err
		}
		if cmd.Kind == Build {
			if bin, ok := cmd.Args.BinName(); ok {
				return Command{}, &OptionError{Option: "--bin", Value: bin, Err: ErrIllegalCombination}
			}
		}
		return remap(cmd, Test, TestHelp), nil
	case "--help", "-h":
		return Command{Kind: Help}, nil
	case "--version":
		return Command{Kind: Version}, nil
	default:
		return Command{Kind: NoSubcommand}, nil
	}
}

func remap(cmd Command, build, help Kind) Command {
	switch cmd.Kind {
	case Build:
		cmd.Kind = build
	case BuildHelp:
		cmd.Kind = help
	}
	return cmd
}
