package wisard

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Output selects what a classifier run prints.
type Output int

const (
	// OutputAccuracy prints the accuracy of each label and the total accuracy.
	OutputAccuracy Output = iota
	// OutputPredictions prints the predicted label of each sample.
	OutputPredictions
	// OutputScores prints the scores of each sample.
	OutputScores
)

var outputNames = [...]string{"accuracy", "predictions", "scores"}

func (o Output) String() string {
	if o < 0 || int(o) >= len(outputNames) {
		return fmt.Sprintf("Output(%d)", int(o))
	}
	return outputNames[o]
}

// ParseOutput returns the output named name.
func ParseOutput(name string) (Output, error) {
	for i, n := range outputNames {
		if n == name {
			return Output(i), nil
		}
	}
	return 0, fmt.Errorf("unknown output %q", name)
}

// Report writes the result of a run to w, in the format selected by o.
func Report(w io.Writer, o Output, scores [][]uint64, labels []uint8, numLabels int) error {
	var err error
	switch o {
	case OutputScores:
		rows := make([]string, len(scores))
		for i, sc := range scores {
			rows[i] = formatList(sc, func(v uint64) string { return strconv.FormatUint(v, 10) })
		}
		_, err = fmt.Fprintln(w, "["+strings.Join(rows, ", ")+"]")

	case OutputPredictions:
		_, err = fmt.Fprintln(w, formatList(Predictions(scores), func(v uint8) string { return strconv.Itoa(int(v)) }))

	default:
		perLabel, total := Accuracy(Predictions(scores), labels, numLabels)
		_, err = fmt.Fprintf(w, "Label Accuracy: %s\n\nAccuracy: %.2f%%\n", formatList(perLabel, formatFloat), total*100)
	}
	return err
}

func formatList[T any](vs []T, format func(T) string) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = format(v)
	}
	return "[" + strings.Join(s, ", ") + "]"
}

// formatFloat prints f in its shortest form, keeping a decimal point on integers.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !math.IsNaN(f) && !math.IsInf(f, 0) && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
