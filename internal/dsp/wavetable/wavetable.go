// Package wavetable provides precomputed, read-only waveform tables
// shared by every oscillator without synchronization.
package wavetable

import "math"

// Size is the table length. It must be a power of two so that a
// uint16 phase counter indexes it modulo Size via truncation alone.
const Size = 1 << 16

// Kind selects which precomputed table an oscillator reads from.
type Kind int

const (
	Sine Kind = iota
	Square
	Triangle
	Saw
)

// String implements fmt.Stringer for diagnostics.
func (k Kind) String() string {
	switch k {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Saw:
		return "saw"
	default:
		return "unknown"
	}
}

var (
	sineTable     [Size]float32
	squareTable   [Size]float32
	triangleTable [Size]float32
	sawTable      [Size]float32
)

func init() {
	for i := 0; i < Size; i++ {
		theta := 2 * math.Pi * float64(i) / float64(Size)
		sineTable[i] = float32(math.Sin(theta))

		if i < Size/2 {
			squareTable[i] = 0.5
		} else {
			squareTable[i] = -0.5
		}

		triangleTable[i] = float32((2.0 / math.Pi) * math.Asin(math.Sin(theta)))

		sawTable[i] = float32(2*float64(i)/float64(Size) - 1)
	}
}

// Table returns the read-only table for the given waveform kind.
// Callers must not mutate the returned slice.
func Table(k Kind) *[Size]float32 {
	switch k {
	case Sine:
		return &sineTable
	case Square:
		return &squareTable
	case Triangle:
		return &triangleTable
	case Saw:
		return &sawTable
	default:
		return &sineTable
	}
}

// Lookup returns the sample at the given uint16 phase for waveform k.
func Lookup(k Kind, phase uint16) float32 {
	return Table(k)[phase]
}
