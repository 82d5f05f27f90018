package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/brandonbloom/bootimage/internal/args"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const noSubcommandHint = "Please invoke `bootimage` with a subcommand (e.g. `bootimage build`)."

var colorHelpTitle = color.New(color.FgYellow, color.Bold).SprintFunc()

type helpPage struct {
	summary  string
	sections []helpSection
}

// helpSection is a titled block of aligned rows, free text, or both.
type helpSection struct {
	title string
	rows  []helpRow
	text  []string
}

type helpRow struct {
	name string
	desc string
}

const helpIndent = "    "

func (p helpPage) render(w io.Writer) error {
	var b strings.Builder
	b.WriteString(p.summary)
	b.WriteString("\n")
	for _, section := range p.sections {
		b.WriteString("\n")
		b.WriteString(colorHelpTitle(section.title + ":"))
		b.WriteString("\n")
		writeRows(&b, section.rows)
		if len(section.rows) > 0 && len(section.text) > 0 {
			b.WriteString("\n")
		}
		for _, line := range section.text {
			if line == "" {
				b.WriteString("\n")
				continue
			}
			b.WriteString(helpIndent + line + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRows(b *strings.Builder, rows []helpRow) {
	width := 0
	for _, row := range rows {
		width = max(width, runewidth.StringWidth(row.name))
	}
	for _, row := range rows {
		if row.desc == "" {
			fmt.Fprintf(b, "%s%s\n", helpIndent, row.name)
			continue
		}
		fmt.Fprintf(b, "%s%s    %s\n", helpIndent, runewidth.FillRight(row.name, width), row.desc)
	}
}

const summary = "Creates a bootable disk image from a Rust kernel"

var buildOptionRows = []helpRow{
	{"--bin <NAME>", "Kernel binary to build (defaults to the package's binary)"},
	{"--target <TRIPLE>", "Target triple or target spec file (defaults to `default-target`)"},
	{"--manifest-path <PATH>", "Path to Cargo.toml"},
	{"--release", "Build artifacts in release mode, with optimizations"},
	{"-h, --help", "Prints help information and exit"},
}

var rootHelp = helpPage{
	summary: summary,
	sections: []helpSection{
		{title: "USAGE", rows: []helpRow{
			{"bootimage [OPTIONS]", ""},
			{"bootimage <SUBCOMMAND> [BUILD_OPTS]", ""},
		}},
		{title: "OPTIONS", rows: []helpRow{
			{"-h, --help", "Prints help information and exit"},
			{"--version", "Prints version information and exit"},
		}},
		{title: "SUBCOMMANDS", rows: []helpRow{
			{"build", "Create a bootable disk image"},
			{"run", "Build and run a disk image"},
			{"test", "Runs integration tests"},
		}, text: []string{"(see `bootimage <subcommand> --help` for more info)"}},
	},
}

var buildHelp = helpPage{
	summary: summary,
	sections: []helpSection{
		{title: "USAGE", rows: []helpRow{
			{"bootimage build [BUILD_OPTS]", "Create a bootable disk image"},
		}, text: []string{"(for other forms of usage see `bootimage --help`)"}},
		{title: "BUILD_OPTS", rows: buildOptionRows, text: []string{
			"Any other options are passed directly to `cargo build` (see",
			"`cargo build --help` for possible options).",
		}},
	},
}

var runHelp = helpPage{
	summary: summary,
	sections: []helpSection{
		{title: "USAGE", rows: []helpRow{
			{"bootimage run [BUILD_OPTS] -- [RUN_OPTS]", "Build and run a disk image"},
		}, text: []string{"(for other forms of usage see `bootimage --help`)"}},
		{title: "BUILD_OPTS", rows: buildOptionRows, text: []string{
			"Any other options are passed directly to `cargo build`.",
		}},
		{title: "RUN_OPTS", text: []string{
			"Arguments after `--` are appended to the configured `run-command`",
			"(qemu by default) after `run-args`. They are never interpreted",
			"by bootimage.",
		}},
	},
}

var testHelp = helpPage{
	summary: summary,
	sections: []helpSection{
		{title: "USAGE", rows: []helpRow{
			{"bootimage test [BUILD_OPTS] [-- TEST_OPTS]", "Runs integration tests"},
		}, text: []string{"(for other forms of usage see `bootimage --help`)"}},
		{title: "BUILD_OPTS", rows: buildOptionRows[1:], text: []string{
			"Any other options are passed directly to `cargo test`.",
			"`--bin` is not accepted; every test target is built.",
		}},
		{title: "TEST_OPTS", text: []string{
			"Arguments after `--` are passed to the test harness after `test-args`.",
			"Tests are stopped after `test-timeout` seconds (default 300).",
		}},
	},
}

func helpFor(kind args.Kind) (helpPage, bool) {
	switch kind {
	case args.Help:
		return rootHelp, true
	case args.BuildHelp:
		return buildHelp, true
	case args.RunHelp:
		return runHelp, true
	case args.TestHelp:
		return testHelp, true
	default:
		return helpPage{}, false
	}
}
