package wisard_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wisardfhe/tfhe-lut/wisard"
)

func TestActivation(t *testing.T) {
	tests := []struct {
		act  wisard.Activation
		in   []uint64
		want []uint64
	}{
		{wisard.ActivationBinary, []uint64{0, 1, 7}, []uint64{0, 1, 1}},
		{wisard.ActivationLinear, []uint64{0, 1, 7}, []uint64{0, 1, 7}},
		{wisard.ActivationLog, []uint64{0, 1, 2, 3, 100}, []uint64{0, 1, 1, 2, 6}},
		{wisard.ActivationBoundedLog, []uint64{0, 3, 100, math.MaxUint64}, []uint64{0, 2, 5, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.act.String(), func(t *testing.T) {
			for i, v := range tc.in {
				assert.Equal(t, tc.want[i], tc.act.Apply(v), "v=%d", v)
			}

			act, err := wisard.ParseActivation(tc.act.String())
			require.NoError(t, err)
			assert.Equal(t, tc.act, act)
		})
	}

	_, err := wisard.ParseActivation("relu")
	assert.Error(t, err)
}

func TestScorer(t *testing.T) {
	// Two samples, two tables, two labels.
	counters := []uint64{3, 0, 1, 2, 0, 0, 5, 5}

	tests := []struct {
		name   string
		scorer wisard.Scorer
		want   [][]uint64
	}{
		{"Binary", wisard.Scorer{Activation: wisard.ActivationBinary}, [][]uint64{{2, 1}, {1, 1}}},
		{"Threshold", wisard.Scorer{Activation: wisard.ActivationLinear, Threshold: 1}, [][]uint64{{2, 1}, {4, 4}}},
		{"ThresholdBinary", wisard.Scorer{Activation: wisard.ActivationBinary, Threshold: 2}, [][]uint64{{1, 0}, {1, 1}}},
		{"Log", wisard.Scorer{Activation: wisard.ActivationLog}, [][]uint64{{3, 1}, {2, 2}}},
		{"Wrap", wisard.Scorer{Activation: wisard.ActivationLinear, CountBits: 2}, [][]uint64{{4, 2}, {1, 1}}},
		{"Weights", wisard.Scorer{Activation: wisard.ActivationLinear, Weights: []float64{1, 2.5}}, [][]uint64{{4, 5}, {5, 12}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.scorer
			s.NumLabels, s.NumLuts = 2, 2
			if s.CountBits == 0 {
				s.CountBits = 8
			}
			assert.Equal(t, tc.want, s.Scores(counters))
		})
	}
}

func TestPredictions(t *testing.T) {
	scores := [][]uint64{{2, 1, 0}, {1, 1, 0}, {0, 3, 3}, {0, 0, 0}}
	assert.Equal(t, []uint8{0, 1, 2, 2}, wisard.Predictions(scores))
}

func TestAccuracy(t *testing.T) {
	perLabel, total := wisard.Accuracy([]uint8{0, 1, 1, 0}, []uint8{0, 1, 0, 0}, 3)
	require.Len(t, perLabel, 3)
	assert.InDelta(t, 2.0/3.0, perLabel[0], 1e-12)
	assert.Equal(t, 1.0, perLabel[1])
	assert.True(t, math.IsNaN(perLabel[2]))
	assert.Equal(t, 0.75, total)

	assert.Panics(t, func() { wisard.Accuracy([]uint8{0}, nil, 1) })
}

func TestLabelWeights(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 4}, wisard.LabelWeights([]int{4, 2, 1}))
	assert.True(t, math.IsInf(wisard.LabelWeights([]int{1, 0})[1], 1))
}

func TestReport(t *testing.T) {
	scores := [][]uint64{{2, 1}, {1, 1}, {3, 0}, {0, 4}}
	labels := []uint8{0, 0, 0, 1}

	tests := []struct {
		output wisard.Output
		want   string
	}{
		{wisard.OutputScores, "[[2, 1], [1, 1], [3, 0], [0, 4]]\n"},
		{wisard.OutputPredictions, "[0, 1, 0, 1]\n"},
		{wisard.OutputAccuracy, "Label Accuracy: [0.6666666666666666, 1.0]\n\nAccuracy: 75.00%\n"},
	}

	for _, tc := range tests {
		t.Run(tc.output.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, wisard.Report(&buf, tc.output, scores, labels, 2))
			assert.Equal(t, tc.want, buf.String())

			o, err := wisard.ParseOutput(tc.output.String())
			require.NoError(t, err)
			assert.Equal(t, tc.output, o)
		})
	}
}
