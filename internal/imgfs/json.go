package imgfs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// listJSON is the wire shape for ListJSON: `{"Images": [img_id, ...]}`
// (spec.md §4.E list).
type listJSON struct {
	Images []string `json:"Images"`
}

func encodeListJSON(slots []Slot) string {
	ids := make([]string, 0, len(slots))

	for _, s := range slots {
		if s.IsValid {
			ids = append(ids, s.ImgID)
		}
	}

	buf, err := json.Marshal(listJSON{Images: ids})
	if err != nil {
		// Images is always a slice of plain strings; Marshal cannot fail here.
		panic(fmt.Sprintf("imgfs: marshal list json: %v", err))
	}

	return string(buf)
}

func renderListStdout(h Header, slots []Slot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*****ImgFS Header*****\n")
	fmt.Fprintf(&b, "TYPE: %s\n", h.Name)
	fmt.Fprintf(&b, "VERSION: %d\n", h.Version)
	fmt.Fprintf(&b, "IMAGE COUNT: %d\t\tMAX IMAGES: %d\n", h.NbFiles, h.MaxFiles)
	fmt.Fprintf(&b, "THUMBNAIL: %d x %d\tSMALL: %d x %d\n", h.ResizedRes[0], h.ResizedRes[1], h.ResizedRes[2], h.ResizedRes[3])
	fmt.Fprintf(&b, "***********************\n")

	if h.NbFiles == 0 {
		b.WriteString("<< empty imgFS >>\n")
		return b.String()
	}

	for i, s := range slots {
		if !s.IsValid {
			continue
		}

		fmt.Fprintf(&b, "%d: %s  orig: %dx%d  valid\n", i, s.ImgID, s.OrigW, s.OrigH)
	}

	return b.String()
}
