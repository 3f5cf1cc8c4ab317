package flow

import "fmt"

// UnsplittableOverflowError reports an atomic element taller than a full
// empty column. Nothing can place it, so the whole generation fails.
type UnsplittableOverflowError struct {
	Kind   string
	Height float64
	Avail  float64
}

func (e *UnsplittableOverflowError) Error() string {
	return fmt.Sprintf("layout: %s of height %.1f exceeds column height %.1f and cannot be split",
		e.Kind, e.Height, e.Avail)
}

// ResourceError reports an external input (image file, font file) that
// could not be loaded or decoded.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %q: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
