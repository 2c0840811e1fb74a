package imgfs

// dedup scans every other valid slot against the newly populated target
// slot i, per spec.md §4.C.
//
// On a matching img_id it returns ErrDuplicateID; the caller must roll the
// target slot back. On a matching SHA with a different id, it copies that
// slot's (offset, size) pairs into i for every resolution and keeps
// scanning, since invariant 5 guarantees any further SHA match is
// consistent with the first.
func dedup(slots []Slot, i int) error {
	target := slots[i]
	target.Offset[OrigRes] = 0

	for j, other := range slots {
		if j == i || !other.IsValid {
			continue
		}

		if other.ImgID == target.ImgID {
			return ErrDuplicateID
		}

		if target.Offset[OrigRes] == 0 && other.SHA == target.SHA {
			target.Offset = other.Offset
			target.Size = other.Size
		}
	}

	slots[i] = target

	return nil
}
