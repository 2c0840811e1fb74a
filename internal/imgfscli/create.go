package imgfscli

import (
	"fmt"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
	"github.com/epfl-sysnet/imgfs/internal/imgfs"

	flag "github.com/spf13/pflag"
)

// CreateCmd returns the create command.
func CreateCmd(fs fsx.FS, cfg imgfs.CLIConfig) *Command {
	flags := flag.NewFlagSet("create", flag.ContinueOnError)

	maxFiles := flags.Uint32("max_files", 0, "maximum number of images the container can hold")
	thumbW := flags.Uint16("thumb_res_x", 0, "thumbnail resolution width")
	thumbH := flags.Uint16("thumb_res_y", 0, "thumbnail resolution height")
	smallW := flags.Uint16("small_res_x", 0, "small resolution width")
	smallH := flags.Uint16("small_res_y", 0, "small resolution height")

	return &Command{
		Flags: flags,
		Usage: "create <file> [--max_files N] [--thumb_res_x W] [--thumb_res_y H] [--small_res_x W] [--small_res_y H]",
		Short: "Create a new imgFS container",
		Long:  "Create a new, empty imgFS container at the given path.",
		Exec: func(o *IO, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("file argument required: %w", imgfs.ErrNotEnoughArguments)
			}

			opts := imgfs.CreateOptions{
				MaxFiles: cfg.MaxFiles,
				ThumbW:   cfg.ThumbW, ThumbH: cfg.ThumbH,
				SmallW: cfg.SmallW, SmallH: cfg.SmallH,
			}

			if flags.Changed("max_files") {
				opts.MaxFiles = *maxFiles
			}

			if flags.Changed("thumb_res_x") || flags.Changed("thumb_res_y") {
				opts.ThumbW, opts.ThumbH = *thumbW, *thumbH
			}

			if flags.Changed("small_res_x") || flags.Changed("small_res_y") {
				opts.SmallW, opts.SmallH = *smallW, *smallH
			}

			engine, err := imgfs.Create(fs, args[0], opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			h := engine.Header()
			o.Println("created", args[0], "with", h.MaxFiles, "slots")

			return nil
		},
	}
}
