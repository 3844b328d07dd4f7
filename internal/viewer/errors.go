package viewer

import "fmt"

// FetchError reports a failure to download a mesh.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RenderError reports a GPU-side failure such as context creation or
// buffer upload. It is fatal to the current surface, but a later Load
// may succeed once the surface is recreated.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
