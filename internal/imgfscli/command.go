package imgfscli

import (
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command defines an imgfscmd subcommand with unified help generation,
// adapted from the teacher's internal/cli dispatcher.
type Command struct {
	// Flags defines command-specific flags. May be nil for flagless commands.
	Flags *flag.FlagSet

	// Usage is the freeform usage string shown after "imgfscmd" in help,
	// e.g. "create <file> [-max_files N]".
	Usage string

	// Short is a one-line description for the top-level help listing.
	Short string

	// Long is the full description shown in "imgfscmd <cmd> --help". Falls
	// back to Short when empty.
	Long string

	// Exec runs the command after flags are parsed.
	Exec func(o *IO, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine returns the command's line in the top-level help listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-40s %s", c.Usage, c.Short)
}

// PrintHelp prints "imgfscmd <cmd> --help" output.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: imgfscmd", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run parses flags and executes the command, returning a process exit code.
func (c *Command) Run(o *IO, args []string) int {
	flags := c.Flags
	if flags == nil {
		flags = flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	}

	flags.SetOutput(&strings.Builder{})

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return 0
		}

		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o)

		return 1
	}

	if err := c.Exec(o, flags.Args()); err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	return 0
}
