package mapper

import "fmt"

// CompressAlgo represents a supported compression algorithm.
type CompressAlgo string

const (
	// CompressZstd uses zstd at the default level.
	CompressZstd CompressAlgo = "zstd"

	// CompressLZ4 uses LZ4 frames.
	CompressLZ4 CompressAlgo = "lz4"
)

// CipherAlgo represents a supported encryption algorithm.
type CipherAlgo string

const (
	// CipherAES uses AES-GCM symmetric encryption.
	CipherAES CipherAlgo = "aes"

	// CipherXChaCha uses XChaCha20-Poly1305 symmetric encryption.
	CipherXChaCha CipherAlgo = "xchacha"
)

// validCompressAlgos contains all valid compression algorithms.
var validCompressAlgos = map[CompressAlgo]bool{
	CompressZstd: true,
	CompressLZ4:  true,
}

// validCipherAlgos contains all valid encryption algorithms.
var validCipherAlgos = map[CipherAlgo]bool{
	CipherAES:     true,
	CipherXChaCha: true,
}

// IsValidCompressAlgo returns true if the algorithm is a known compression algorithm.
func IsValidCompressAlgo(algo CompressAlgo) bool {
	return validCompressAlgos[algo]
}

// IsValidCipherAlgo returns true if the algorithm is a known encryption algorithm.
func IsValidCipherAlgo(algo CipherAlgo) bool {
	return validCipherAlgos[algo]
}

// NewCompressor returns the Compressor for algo.
func NewCompressor(algo CompressAlgo) (Compressor, error) {
	switch algo {
	case CompressZstd:
		return Zstd(), nil
	case CompressLZ4:
		return LZ4(), nil
	}
	return nil, fmt.Errorf("%w: compression %q", ErrUnknownAlgorithm, algo)
}

// NewCipher returns the Cipher for algo keyed with key.
func NewCipher(algo CipherAlgo, key []byte) (Cipher, error) {
	switch algo {
	case CipherAES:
		return AES(key)
	case CipherXChaCha:
		return XChaCha(key)
	}
	return nil, fmt.Errorf("%w: cipher %q", ErrUnknownAlgorithm, algo)
}
