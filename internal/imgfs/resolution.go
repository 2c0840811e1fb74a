package imgfs

// ParseResolution maps a user-supplied resolution name to a [Resolution],
// per spec.md §4.G: the value is case-sensitive.
func ParseResolution(name string) (Resolution, error) {
	switch name {
	case "thumb", "thumbnail":
		return ThumbRes, nil
	case "small":
		return SmallRes, nil
	case "orig", "original":
		return OrigRes, nil
	default:
		return 0, ErrResolutions
	}
}
