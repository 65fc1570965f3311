package hash

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when image bytes cannot be decoded.
var ErrDecode = errors.New("hash: image decode failed")

// gridSize is the side of the downsampled grid; the fingerprint has gridSize² bits.
const gridSize = 8

// Scheme selects how the 64-bit difference hash is derived.
type Scheme int

const (
	// SchemeGrid downsamples to an 8x8 grid and compares each pixel with its
	// predecessor in the flattened grid.
	SchemeGrid Scheme = iota
	// SchemeRow is the classic 9x8 row-wise difference hash.
	SchemeRow
)

// ParseScheme maps a configuration value to a Scheme. Unknown values fall back to grid.
func ParseScheme(s string) Scheme {
	switch s {
	case "row", "dhash-row":
		return SchemeRow
	default:
		return SchemeGrid
	}
}

func (s Scheme) String() string {
	switch s {
	case SchemeRow:
		return "row"
	default:
		return "grid"
	}
}

// ImageHash represents a computed perceptual fingerprint.
type ImageHash struct {
	Hash   uint64
	Scheme Scheme
}

// PerceptualHasher computes difference hashes. It performs no I/O.
type PerceptualHasher struct {
	scheme Scheme
}

// NewPerceptualHasher creates a new PerceptualHasher for the given scheme.
func NewPerceptualHasher(scheme Scheme) *PerceptualHasher {
	return &PerceptualHasher{scheme: scheme}
}

// Scheme returns the hashing scheme in use.
func (ph *PerceptualHasher) Scheme() Scheme {
	return ph.scheme
}

// ComputeHashFromBytes decodes data and fingerprints it.
func (ph *PerceptualHasher) ComputeHashFromBytes(data []byte) (*ImageHash, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return ph.ComputeHash(img)
}

// ComputeHash fingerprints an already decoded image.
func (ph *PerceptualHasher) ComputeHash(img image.Image) (*ImageHash, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image bounds", ErrDecode)
	}

	var (
		bits uint64
		err  error
	)
	switch ph.scheme {
	case SchemeRow:
		bits, err = rowDHash(img)
	default:
		bits = gridDHash(img)
	}
	if err != nil {
		return nil, err
	}

	return &ImageHash{
		Hash:   bits,
		Scheme: ph.scheme,
	}, nil
}

// gridDHash resizes to 8x8, converts to grayscale and sets bit i when
// pixel i is brighter than pixel i-1. Bit 0 wraps around to the last pixel.
func gridDHash(img image.Image) uint64 {
	small := imaging.Grayscale(imaging.Resize(img, gridSize, gridSize, imaging.Lanczos))

	const n = gridSize * gridSize
	var px [n]uint8
	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			px[y*gridSize+x] = small.NRGBAAt(x, y).R
		}
	}

	var bits uint64
	for i := 0; i < n; i++ {
		prev := px[(i+n-1)%n]
		bits <<= 1
		if px[i] > prev {
			bits |= 1
		}
	}
	return bits
}

func rowDHash(img image.Image) (uint64, error) {
	h, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return 0, fmt.Errorf("failed to compute dHash: %w", err)
	}
	return h.GetHash(), nil
}

// String returns the fingerprint as 16 lowercase hex chars.
func (h *ImageHash) String() string {
	return fmt.Sprintf("%016x", h.Hash)
}
