package imgfscli

import (
	"fmt"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
	"github.com/epfl-sysnet/imgfs/internal/imgfs"
)

// DeleteCmd returns the delete command.
func DeleteCmd(fs fsx.FS) *Command {
	return &Command{
		Usage: "delete <file> <img_id>",
		Short: "Delete an image from an imgFS container",
		Long:  "Mark an image's slot invalid, freeing it for reuse by a later insert.",
		Exec: func(o *IO, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("file and img_id arguments required: %w", imgfs.ErrNotEnoughArguments)
			}

			engine, err := imgfs.Open(fs, args[0])
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Delete(args[1]); err != nil {
				return err
			}

			o.Println("deleted", args[1])

			return nil
		},
	}
}
