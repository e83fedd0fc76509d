package transcoder

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrDuplicateRegistration indicates a type or name is already registered.
	ErrDuplicateRegistration = errors.New("duplicate registration")

	// ErrInvalidTranscoding indicates a transcoding cannot be registered or misbehaved.
	ErrInvalidTranscoding = errors.New("invalid transcoding")

	// ErrRegistryFrozen indicates a registration after the registry was frozen.
	ErrRegistryFrozen = errors.New("registry frozen")

	// ErrUnsupportedType indicates a value has no native handling and no transcoding.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnsupportedValue indicates a native value JSON cannot represent (NaN, ±Inf).
	ErrUnsupportedValue = errors.New("unsupported value")

	// ErrMaxDepth indicates the value nests deeper than the configured limit.
	ErrMaxDepth = errors.New("max depth exceeded")

	// ErrUnknownTag indicates an envelope names a transcoding that is not registered.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrEncode indicates a transcoding failed to encode a value.
	ErrEncode = errors.New("encode failed")

	// ErrDecode indicates a transcoding failed to decode its payload.
	ErrDecode = errors.New("decode failed")

	// ErrMalformedInput indicates the backend could not parse the input bytes.
	ErrMalformedInput = errors.New("malformed input")

	// ErrRender indicates the backend could not render a native tree.
	ErrRender = errors.New("render failed")
)

// RegistrationError represents a failed Register call.
type RegistrationError struct {
	Err  error  // Underlying sentinel error (ErrDuplicateRegistration, etc.)
	Name string // Transcoding name
	Type string // Go type the transcoding handles
}

func (e *RegistrationError) Error() string {
	switch {
	case e.Name != "" && e.Type != "":
		return fmt.Sprintf("%s: %q for type %s", e.Err.Error(), e.Name, e.Type)
	case e.Name != "":
		return fmt.Sprintf("%s: %q", e.Err.Error(), e.Name)
	case e.Type != "":
		return fmt.Sprintf("%s: type %s", e.Err.Error(), e.Type)
	}
	return e.Err.Error()
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// TypeError represents a value the encoder cannot handle.
type TypeError struct {
	Err  error        // Underlying sentinel error (ErrUnsupportedType, ErrUnsupportedValue, ErrMaxDepth)
	Type reflect.Type // Offending type, nil for a nil interface
	Path string       // JSON path of the offending node
}

func (e *TypeError) Error() string {
	msg := e.Err.Error()
	if e.Type != nil {
		msg = fmt.Sprintf("%s %s", msg, e.Type)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s at %s", msg, e.Path)
	}
	return msg
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

// TagError represents an envelope whose tag has no registration.
type TagError struct {
	Err  error  // Underlying sentinel error (ErrUnknownTag)
	Tag  string // Envelope _type_ value
	Path string // JSON path of the envelope
}

func (e *TagError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %q at %s", e.Err.Error(), e.Tag, e.Path)
	}
	return fmt.Sprintf("%s %q", e.Err.Error(), e.Tag)
}

func (e *TagError) Unwrap() error {
	return e.Err
}

// TranscodingError represents a failure inside a registered transcoding.
type TranscodingError struct {
	Err   error  // Underlying sentinel error (ErrEncode, ErrDecode, ErrInvalidTranscoding)
	Name  string // Transcoding name
	Path  string // JSON path of the node
	Cause error  // Original error from the transcoding
}

func (e *TranscodingError) Error() string {
	msg := fmt.Sprintf("%s %q", e.Err.Error(), e.Name)
	if e.Path != "" {
		msg = fmt.Sprintf("%s at %s", msg, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TranscodingError) Unwrap() error {
	return e.Err
}

// CodecError represents a backend render/parse error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrRender, ErrMalformedInput)
	Cause error // Original error from the backend
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newRegistrationError creates a RegistrationError.
func newRegistrationError(sentinel error, name string, typ reflect.Type) error {
	e := &RegistrationError{Err: sentinel, Name: name}
	if typ != nil {
		e.Type = typ.String()
	}
	return e
}

// newTypeError creates a TypeError for the node at the root; callers prepend path segments.
func newTypeError(sentinel error, typ reflect.Type) error {
	return &TypeError{Err: sentinel, Type: typ}
}

// newTagError creates a TagError for an unknown envelope tag.
func newTagError(tag string) error {
	return &TagError{Err: ErrUnknownTag, Tag: tag}
}

// newTranscodingError creates a TranscodingError wrapping a transcoding's own failure.
func newTranscodingError(sentinel error, name string, cause error) error {
	return &TranscodingError{Err: sentinel, Name: name, Cause: cause}
}

// newCodecError creates a CodecError for backend failures.
// Errors already classified by the backend are returned unchanged.
func newCodecError(sentinel error, cause error) error {
	var ce *CodecError
	if errors.As(cause, &ce) {
		return cause
	}
	return &CodecError{Err: sentinel, Cause: cause}
}

// withPath prepends a path segment to errors raised below a container.
// Paths are assembled while the walk unwinds.
func withPath(err error, segment string) error {
	switch e := err.(type) {
	case *TypeError:
		e.Path = segment + e.Path
	case *TagError:
		e.Path = segment + e.Path
	case *TranscodingError:
		e.Path = segment + e.Path
	}
	return err
}

// rootPath finalizes a path once the walk has unwound to the top.
func rootPath(err error) error {
	switch e := err.(type) {
	case *TypeError:
		e.Path = "$" + e.Path
	case *TagError:
		e.Path = "$" + e.Path
	case *TranscodingError:
		e.Path = "$" + e.Path
	}
	return err
}

func indexSegment(i int) string {
	return fmt.Sprintf("[%d]", i)
}

func keySegment(key string) string {
	return fmt.Sprintf("[%q]", key)
}
