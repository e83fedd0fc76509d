package transcoder

// Backend converts trees of native values to and from bytes.
//
// A native tree is built only from nil, bool, string, int,
// float64, *big.Int, Number, []any, *Map and map[string]any. The Transcoder
// never hands a Backend an application type.
type Backend interface {
	// ContentType returns the MIME type produced by Render (e.g., "application/json").
	ContentType() string

	// Render encodes a native tree into bytes.
	Render(tree any) ([]byte, error)

	// Parse decodes bytes into a native tree.
	// Objects must be returned as *Map, arrays as []any, integer literals as int
	// or *big.Int and other numeric literals as float64.
	Parse(data []byte) (any, error)
}
