package gnubg

import (
	"bgeval/internal/gnubg/sigmoid"
	"runtime"

	"golang.org/x/sys/cpu"
)

var fSSE bool

func init() {
	fSSE = simdSupported()
	if fSSE {
		evaluateFull = evaluateSSE
	}
}

// simdSupported reports whether the CPU has the 128 bit vector unit the
// unrolled evaluator is tuned for.
func simdSupported() bool {
	switch runtime.GOARCH {
	case "amd64", "386":
		return cpu.X86.HasSSE2
	case "arm64":
		return cpu.ARM64.HasASIMD
	}
	return false
}

// SIMD reports whether full evaluations use the vectorized path.
func SIMD() bool {
	return fSSE
}

func evaluateSSE(pnn *_NeuralNet, arInput []float32, ar []float32, arOutput []float32, saveAr []float32) {
	cHidden := pnn.cHidden

	/* Calculate activity at hidden nodes */
	copy(ar, pnn.arHiddenThreshold)

	for i, ari := range arInput {
		if ari == 0.0 {
			continue
		}
		prWeight := pnn.arHiddenWeight[i*cHidden : (i+1)*cHidden]

		if ari == 1.0 {
			addVec4(ar, prWeight)
		} else {
			scaleAddVec4(ar, prWeight, ari)
		}
	}

	if saveAr != nil {
		copy(saveAr, ar)
	}

	for i := 0; i < cHidden; i++ {
		ar[i] = sigmoid.Sigmoid(-pnn.rBetaHidden * ar[i])
	}

	/* Calculate activity at output nodes */
	for i := 0; i < pnn.cOutput; i++ {
		r := pnn.arOutputThreshold[i] + dotVec4(ar, pnn.arOutputWeight[i*cHidden:(i+1)*cHidden])
		arOutput[i] = sigmoid.Sigmoid(-pnn.rBetaOutput * r)
	}
}

func addVec4(ar []float32, w []float32) {
	n := len(ar) &^ 3
	w = w[:len(ar)]
	for j := 0; j < n; j += 4 {
		a := ar[j : j+4 : j+4]
		b := w[j : j+4 : j+4]
		a[0] += b[0]
		a[1] += b[1]
		a[2] += b[2]
		a[3] += b[3]
	}
	for j := n; j < len(ar); j++ {
		ar[j] += w[j]
	}
}

func scaleAddVec4(ar []float32, w []float32, s float32) {
	n := len(ar) &^ 3
	w = w[:len(ar)]
	for j := 0; j < n; j += 4 {
		a := ar[j : j+4 : j+4]
		b := w[j : j+4 : j+4]
		a[0] += b[0] * s
		a[1] += b[1] * s
		a[2] += b[2] * s
		a[3] += b[3] * s
	}
	for j := n; j < len(ar); j++ {
		ar[j] += w[j] * s
	}
}

// four partial sums, folded at the end
func dotVec4(ar []float32, w []float32) float32 {
	var s0, s1, s2, s3 float32
	n := len(ar) &^ 3
	w = w[:len(ar)]
	for j := 0; j < n; j += 4 {
		a := ar[j : j+4 : j+4]
		b := w[j : j+4 : j+4]
		s0 += a[0] * b[0]
		s1 += a[1] * b[1]
		s2 += a[2] * b[2]
		s3 += a[3] * b[3]
	}
	for j := n; j < len(ar); j++ {
		s0 += ar[j] * w[j]
	}
	return (s0 + s1) + (s2 + s3)
}
