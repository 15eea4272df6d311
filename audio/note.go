package audio

import "math"

// Equal temperament, A4 = MIDI 69
const (
	refNote = 69
	refFreq = 440.0
)

// NoteFreq returns the frequency in Hz of a MIDI note; 0 outside 0-127
func NoteFreq(midi int) float64 {
	if midi < 0 || midi > 127 {
		return 0
	}
	return refFreq * math.Exp2(float64(midi-refNote)/12)
}

func chordFreqs(notes ...int) []float64 {
	freqs := make([]float64, len(notes))
	for i, n := range notes {
		freqs[i] = NoteFreq(n)
	}
	return freqs
}
