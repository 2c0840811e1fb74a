package imgfscli

import (
	"fmt"
	"os"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
	"github.com/epfl-sysnet/imgfs/internal/imgfs"
)

// InsertCmd returns the insert command.
func InsertCmd(fs fsx.FS) *Command {
	return &Command{
		Usage: "insert <file> <img_id> <img_path>",
		Short: "Insert an image into an imgFS container",
		Long:  "Read a JPEG file from disk and insert it into the container under img_id.",
		Exec: func(o *IO, args []string) error {
			if len(args) < 3 {
				return fmt.Errorf("file, img_id and img_path arguments required: %w", imgfs.ErrNotEnoughArguments)
			}

			buf, err := os.ReadFile(args[2]) //nolint:gosec // operator-supplied path
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[2], err)
			}

			engine, err := imgfs.Open(fs, args[0])
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Insert(buf, args[1]); err != nil {
				return err
			}

			o.Println("inserted", args[1])

			return nil
		},
	}
}
