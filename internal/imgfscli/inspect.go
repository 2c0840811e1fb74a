package imgfscli

import (
	"encoding/hex"
	"fmt"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
	"github.com/epfl-sysnet/imgfs/internal/imgfs"
)

// InspectCmd returns the inspect command: a read-only diagnostic dump of the
// on-disk layout, grounded in the teacher's print-config conventions.
func InspectCmd(fs fsx.FS) *Command {
	return &Command{
		Usage: "inspect <file>",
		Short: "Dump header and slot layout for debugging",
		Long:  "Print the raw header fields and, for every slot, its validity, SHA-256 and per-resolution offset/size.",
		Exec: func(o *IO, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("file argument required: %w", imgfs.ErrNotEnoughArguments)
			}

			engine, err := imgfs.Open(fs, args[0])
			if err != nil {
				return err
			}
			defer engine.Close()

			h := engine.Header()

			o.Println("name:", h.Name)
			o.Println("version:", h.Version)
			o.Printf("nb_files: %d / %d\n", h.NbFiles, h.MaxFiles)
			o.Printf("thumb: %dx%d  small: %dx%d\n", h.ResizedRes[0], h.ResizedRes[1], h.ResizedRes[2], h.ResizedRes[3])

			slots, err := engine.Slots()
			if err != nil {
				return err
			}

			for i, s := range slots {
				if !s.IsValid {
					o.Printf("slot %3d: empty\n", i)
					continue
				}

				o.Printf("slot %3d: id=%-32s sha=%s orig=%dx%d thumb_off=%d thumb_sz=%d small_off=%d small_sz=%d orig_off=%d orig_sz=%d\n",
					i, s.ImgID, hex.EncodeToString(s.SHA[:]), s.OrigW, s.OrigH,
					s.Offset[imgfs.ThumbRes], s.Size[imgfs.ThumbRes],
					s.Offset[imgfs.SmallRes], s.Size[imgfs.SmallRes],
					s.Offset[imgfs.OrigRes], s.Size[imgfs.OrigRes])
			}

			return nil
		},
	}
}
