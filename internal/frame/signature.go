package frame

import (
	"image"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"
)

// SignatureSize is the side of the downsampled change-detection canvas.
const SignatureSize = 32

// Signature is a coarse grayscale fingerprint of a region, row-major.
type Signature []float64

// ComputeSignature downsamples region to a SignatureSize square of gray samples.
func ComputeSignature(region image.Image) (Signature, error) {
	if region == nil || region.Bounds().Empty() {
		return nil, ErrEmptyRegion
	}
	small := imaging.Resize(imaging.Grayscale(region), SignatureSize, SignatureSize, imaging.Linear)

	sig := make(Signature, SignatureSize*SignatureSize)
	for y := 0; y < SignatureSize; y++ {
		row := small.Pix[y*small.Stride:]
		for x := 0; x < SignatureSize; x++ {
			// Grayscale leaves R == G == B.
			sig[y*SignatureSize+x] = float64(row[x*4])
		}
	}
	return sig, nil
}

// Difference is the mean absolute per-sample difference between two
// signatures. Signatures of different length are maximally different.
func (s Signature) Difference(other Signature) float64 {
	if len(s) == 0 || len(s) != len(other) {
		return 255
	}
	return floats.Distance(s, other, 1) / float64(len(s))
}
