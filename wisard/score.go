package wisard

import (
	"fmt"
	"math/bits"

	"github.com/wisardfhe/tfhe-lut/math/num"
)

// Activation maps a thresholded counter to its contribution to a score.
type Activation int

const (
	// ActivationBinary counts 1 for every non-zero counter.
	ActivationBinary Activation = iota
	// ActivationLinear counts the counter itself.
	ActivationLinear
	// ActivationLog counts floor(log2(v+1)).
	ActivationLog
	// ActivationBoundedLog counts floor(log2(v+1)), at most 5.
	ActivationBoundedLog
)

var activationNames = [...]string{"binary", "linear", "log", "bounded-log"}

func (a Activation) String() string {
	if a < 0 || int(a) >= len(activationNames) {
		return fmt.Sprintf("Activation(%d)", int(a))
	}
	return activationNames[a]
}

// ParseActivation returns the activation named name.
func ParseActivation(name string) (Activation, error) {
	for i, n := range activationNames {
		if n == name {
			return Activation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown activation %q", name)
}

// Apply returns the activation of v.
func (a Activation) Apply(v uint64) uint64 {
	switch a {
	case ActivationBinary:
		if v > 0 {
			return 1
		}
		return 0
	case ActivationLinear:
		return v
	case ActivationLog:
		return uint64(log2(v + 1))
	case ActivationBoundedLog:
		return uint64(min(log2(v+1), 5))
	}
	panic("invalid activation")
}

// log2 returns floor(log2(v)), with log2(0) = 0 so that v+1 may wrap.
func log2(v uint64) int {
	if v == 0 {
		return 0
	}
	return bits.Len64(v) - 1
}

// Scorer sums the activated counters of every table into one score per label.
type Scorer struct {
	NumLabels int
	NumLuts   int
	// CountBits is the number of bits of each counter. Counters wrap around 2^CountBits.
	CountBits int
	// Threshold is subtracted from every counter, saturating at zero.
	Threshold uint64
	// Activation is applied to every thresholded counter.
	Activation Activation
	// Weights scales the counters of each label before thresholding.
	// If nil, counters are not scaled.
	Weights []float64
}

// Scores returns the score of every label for every sample.
//
// counters holds NumLabels counters per address, and NumLuts addresses per sample:
// counters[(s*NumLuts + i)*NumLabels + l] is the counter of table i of sample s under label l.
func (s Scorer) Scores(counters []uint64) [][]uint64 {
	perSample := s.NumLabels * s.NumLuts
	mask := uint64(1)<<s.CountBits - 1

	scores := make([][]uint64, num.DivRoundUp(len(counters), perSample))
	for i := range scores {
		scores[i] = make([]uint64, s.NumLabels)
		chunk := counters[i*perSample : min((i+1)*perSample, len(counters))]
		for j, v := range chunk {
			label := j % s.NumLabels
			v &= mask
			if s.Weights != nil {
				v = uint64(float64(v) * s.Weights[label])
			}
			scores[i][label] += s.Activation.Apply(num.SaturatingSub(v, s.Threshold))
		}
	}
	return scores
}

// Predictions returns the label with the largest score for every sample.
// Ties go to the largest label.
func Predictions(scores [][]uint64) []uint8 {
	preds := make([]uint8, len(scores))
	for i, sc := range scores {
		best := 0
		for l, v := range sc {
			if v >= sc[best] {
				best = l
			}
		}
		preds[i] = uint8(best)
	}
	return preds
}

// Accuracy returns the fraction of correct predictions for each label in [0, numLabels),
// and over all samples.
// The accuracy of a label absent from labels is NaN.
func Accuracy(preds, labels []uint8, numLabels int) ([]float64, float64) {
	if len(preds) != len(labels) {
		panic("prediction count mismatch")
	}

	total := make([]int, numLabels)
	correct := make([]int, numLabels)
	allCorrect := 0
	for i, l := range labels {
		if int(l) < numLabels {
			total[l]++
		}
		if preds[i] == l {
			allCorrect++
			if int(l) < numLabels {
				correct[l]++
			}
		}
	}

	perLabel := make([]float64, numLabels)
	for l := range perLabel {
		perLabel[l] = float64(correct[l]) / float64(total[l])
	}
	return perLabel, float64(allCorrect) / float64(len(labels))
}

// LabelWeights returns, for every label, the count of the most frequent label divided by its count.
func LabelWeights(hist []int) []float64 {
	most := 0
	for _, c := range hist {
		most = max(most, c)
	}

	weights := make([]float64, len(hist))
	for l, c := range hist {
		weights[l] = float64(most) / float64(c)
	}
	return weights
}
