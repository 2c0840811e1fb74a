package imgfscli

import (
	"fmt"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
	"github.com/epfl-sysnet/imgfs/internal/imgfs"
)

// ListCmd returns the list command.
func ListCmd(fs fsx.FS) *Command {
	return &Command{
		Usage: "list <file>",
		Short: "List the images in an imgFS container",
		Long:  "Print a human-readable summary of an imgFS container's header and metadata table.",
		Exec: func(o *IO, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("file argument required: %w", imgfs.ErrNotEnoughArguments)
			}

			engine, err := imgfs.Open(fs, args[0])
			if err != nil {
				return err
			}
			defer engine.Close()

			out, err := engine.List(imgfs.ListStdout)
			if err != nil {
				return err
			}

			o.Printf("%s", out)

			return nil
		},
	}
}
