package stylize

import "fmt"

// EncodingError is returned when an input image could not be encoded into a
// bottleneck of the expected shape.
type EncodingError struct {
	Input string // "style" or "content"
	Err   error
}

func (e *EncodingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("couldn't encode %s image", e.Input)
	}
	return fmt.Sprintf("couldn't encode %s image: %s", e.Input, e.Err.Error())
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// TransformError is returned when the transformer could not produce a
// stylized image.
type TransformError struct {
	Err error
}

func (e *TransformError) Error() string {
	if e.Err == nil {
		return "couldn't stylize image"
	}
	return "couldn't stylize image: " + e.Err.Error()
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
