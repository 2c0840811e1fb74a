package fsx

import "os"

const filePerms = 0o644

// Real implements [FS] using the real filesystem. Every method is a thin
// passthrough to [os]; the only wrinkle is Exists, which collapses
// os.IsNotExist into a plain boolean.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real { return &Real{} }

func (r *Real) Open(path string) (File, error) {
	return os.OpenFile(path, os.O_RDONLY, 0)
}

func (r *Real) OpenReadWrite(path string) (File, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

func (r *Real) Create(path string) (File, error) {
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, filePerms)
}

func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}
