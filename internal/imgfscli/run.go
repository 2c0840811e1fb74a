// Package imgfscli implements the command-line interface for imgfscmd,
// adapted from the teacher's internal/cli dispatcher pattern.
package imgfscli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
	"github.com/epfl-sysnet/imgfs/internal/imgfs"

	flag "github.com/spf13/pflag"
)

// Run is the imgfscmd entry point. Returns a process exit code. sigCh may
// be nil when signal handling is not needed (e.g. in tests).
func Run(out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globalFlags := flag.NewFlagSet("imgfscmd", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.Usage = func() {}
	globalFlags.SetOutput(&strings.Builder{})

	flagHelp := globalFlags.BoolP("help", "h", false, "Show help")
	flagConfig := globalFlags.StringP("config", "c", "", "Use specified config file")

	if err := globalFlags.Parse(args[1:]); err != nil {
		fprintln(errOut, "error:", err)
		printGlobalOptions(errOut)

		return 1
	}

	workDir, err := os.Getwd()
	if err != nil {
		fprintln(errOut, "error:", err)
		return 1
	}

	cfg, err := imgfs.LoadCLIConfig(imgfs.LoadCLIConfigInput{
		WorkDir:    workDir,
		ConfigPath: *flagConfig,
		Env:        env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		return 1
	}

	fs := fsx.NewReal()
	commands := allCommands(fs, cfg)

	commandMap := make(map[string]*Command, len(commands))
	for _, cmd := range commands {
		commandMap[cmd.Name()] = cmd
	}

	commandAndArgs := globalFlags.Args()

	if *flagHelp || len(commandAndArgs) == 0 {
		printUsage(out, commands)
		return 0
	}

	cmdName := commandAndArgs[0]

	if cmdName == "help" {
		printUsage(out, commands)
		return 0
	}

	cmd, ok := commandMap[cmdName]
	if !ok {
		fprintln(errOut, "error: unknown command:", cmdName)
		printUsage(errOut, commands)

		return 1
	}

	cmdIO := NewIO(out, errOut)

	done := make(chan int, 1)

	go func() {
		done <- cmd.Run(cmdIO, commandAndArgs[1:])
	}()

	select {
	case exitCode := <-done:
		return exitCode
	case <-sigCh:
		fprintln(errOut, "interrupted")
	}

	select {
	case <-done:
		return 130
	case <-time.After(5 * time.Second):
		fprintln(errOut, "forced exit")
		return 130
	}
}

func allCommands(fs fsx.FS, cfg imgfs.CLIConfig) []*Command {
	return []*Command{
		CreateCmd(fs, cfg),
		ListCmd(fs),
		ReadCmd(fs),
		InsertCmd(fs),
		DeleteCmd(fs),
		InspectCmd(fs),
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

const globalOptionsHelp = `  -h, --help             Show help
  -c, --config <file>    Use specified config file`

func printGlobalOptions(w io.Writer) {
	fprintln(w, "Usage: imgfscmd [flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Global flags:")
	fprintln(w, globalOptionsHelp)
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, "imgfscmd - a single-file photo store")
	fprintln(w)
	fprintln(w, "Usage: imgfscmd [flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Flags:")
	fprintln(w, globalOptionsHelp)
	fprintln(w)
	fprintln(w, "Commands:")

	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}
}
