package hash

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// createGradientImage creates a gradient that brightens left to right and top to bottom.
func createGradientImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gray := uint8((2*x + y) * 255 / (2*width + height))
			img.Set(x, y, color.RGBA{gray, gray, gray, 255})
		}
	}
	return img
}

// createReverseGradientImage creates the mirror of createGradientImage.
func createReverseGradientImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gray := uint8(255 - (2*x+y)*255/(2*width+height))
			img.Set(x, y, color.RGBA{gray, gray, gray, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func TestPerceptualHasher_Grid(t *testing.T) {
	ph := NewPerceptualHasher(SchemeGrid)
	img := createGradientImage(128, 128)

	h, err := ph.ComputeHash(img)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	if h.Hash == 0 {
		t.Error("Expected non-zero hash for a gradient")
	}
	if h.Scheme != SchemeGrid {
		t.Errorf("Expected grid scheme, got %s", h.Scheme)
	}
	if len(h.String()) != 16 {
		t.Errorf("Expected 16 hex chars, got %q", h.String())
	}
}

func TestPerceptualHasher_Row(t *testing.T) {
	ph := NewPerceptualHasher(SchemeRow)
	h, err := ph.ComputeHash(createGradientImage(100, 100))
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	if h.Scheme != SchemeRow {
		t.Errorf("Expected row scheme, got %s", h.Scheme)
	}
}

func TestPerceptualHasher_DecodeError(t *testing.T) {
	ph := NewPerceptualHasher(SchemeGrid)
	_, err := ph.ComputeHashFromBytes([]byte("definitely not an image"))
	if err == nil {
		t.Fatal("Expected decode error")
	}
	if !errorsIs(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}

func TestSameImageIdenticalHash(t *testing.T) {
	ph := NewPerceptualHasher(SchemeGrid)
	img := createGradientImage(100, 100)

	h1, _ := ph.ComputeHash(img)
	h2, _ := ph.ComputeHash(img)
	if h1.Hash != h2.Hash {
		t.Error("Same image should produce identical hash")
	}
}

func TestReencodedImageStaysClose(t *testing.T) {
	ph := NewPerceptualHasher(SchemeGrid)
	img := createGradientImage(256, 256)

	h1, err := ph.ComputeHashFromBytes(encodePNG(t, img))
	if err != nil {
		t.Fatalf("png hash: %v", err)
	}
	h2, err := ph.ComputeHashFromBytes(encodeJPEG(t, img, 60))
	if err != nil {
		t.Fatalf("jpeg hash: %v", err)
	}

	if d := HammingDistance(h1.Hash, h2.Hash); d > 5 {
		t.Errorf("Re-encoded image distance = %d; want <= 5", d)
	}
}

func TestUnrelatedImagesAreFar(t *testing.T) {
	ph := NewPerceptualHasher(SchemeGrid)
	h1, _ := ph.ComputeHash(createGradientImage(128, 128))
	h2, _ := ph.ComputeHash(createReverseGradientImage(128, 128))

	if d := HammingDistance(h1.Hash, h2.Hash); d < 30 {
		t.Errorf("Unrelated images distance = %d; want >= 30", d)
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in   string
		want Scheme
	}{
		{"grid", SchemeGrid},
		{"row", SchemeRow},
		{"dhash-row", SchemeRow},
		{"", SchemeGrid},
		{"bogus", SchemeGrid},
	}
	for _, tt := range tests {
		if got := ParseScheme(tt.in); got != tt.want {
			t.Errorf("ParseScheme(%q) = %s; want %s", tt.in, got, tt.want)
		}
	}
}

func TestImageHash_String(t *testing.T) {
	h := &ImageHash{Hash: 0xDEADBEEF12345678}
	expected := "deadbeef12345678"
	if h.String() != expected {
		t.Errorf("String() = %s; want %s", h.String(), expected)
	}
}

func BenchmarkGridDHash(b *testing.B) {
	ph := NewPerceptualHasher(SchemeGrid)
	img := createGradientImage(500, 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ph.ComputeHash(img)
	}
}
