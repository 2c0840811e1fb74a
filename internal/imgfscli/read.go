package imgfscli

import (
	"fmt"
	"os"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
	"github.com/epfl-sysnet/imgfs/internal/imgfs"
)

// ReadCmd returns the read command.
func ReadCmd(fs fsx.FS) *Command {
	return &Command{
		Usage: "read <file> <img_id> [orig|small|thumb]",
		Short: "Extract an image from an imgFS container",
		Long:  "Read an image at the given resolution and write it to <img_id>_<resolution>.jpg.",
		Exec: func(o *IO, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("file and img_id arguments required: %w", imgfs.ErrNotEnoughArguments)
			}

			resName := "orig"
			if len(args) >= 3 {
				resName = args[2]
			}

			res, err := imgfs.ParseResolution(resName)
			if err != nil {
				return err
			}

			engine, err := imgfs.Open(fs, args[0])
			if err != nil {
				return err
			}
			defer engine.Close()

			data, err := engine.Read(args[1], res)
			if err != nil {
				return err
			}

			outPath := fmt.Sprintf("%s_%s.jpg", args[1], resName)

			if err := os.WriteFile(outPath, data, 0o644); err != nil { //nolint:gosec // output image, not a secret
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			o.Println("wrote", outPath)

			return nil
		},
	}
}
