// Package wisard implements the plaintext side of a WiSARD classifier:
// dataset loading, binary encoding, address generation and scoring.
package wisard

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"
)

// Sample is one labeled record of a dataset.
type Sample struct {
	Label  uint8
	Values []uint8
}

// LoadCSV reads samples from a CSV file with a header row.
// The first column of every record is the label, and the remaining columns are the values.
// Files ending in ".xz" are decompressed with xz, and files ending in ".gz" with gzip.
func LoadCSV(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r = xr
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	samples, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// ReadCSV reads samples in the format of LoadCSV from r.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header")
		}
		return nil, err
	}

	var samples []Sample
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return samples, nil
		}
		if err != nil {
			return nil, err
		}

		s := Sample{Values: make([]uint8, len(rec)-1)}
		for i, field := range rec {
			v, err := strconv.ParseUint(strings.TrimSpace(field), 10, 8)
			if err != nil {
				return nil, fmt.Errorf("record %d, column %d: %w", len(samples)+1, i, err)
			}
			if i == 0 {
				s.Label = uint8(v)
			} else {
				s.Values[i-1] = uint8(v)
			}
		}
		samples = append(samples, s)
	}
}

// Window returns at most limit samples, after skipping the first skip.
func Window(samples []Sample, skip, limit int) []Sample {
	if skip >= len(samples) {
		return nil
	}
	samples = samples[skip:]
	if limit >= 0 && limit < len(samples) {
		samples = samples[:limit]
	}
	return samples
}

// Labels returns the label of every sample.
func Labels(samples []Sample) []uint8 {
	labels := make([]uint8, len(samples))
	for i, s := range samples {
		labels[i] = s.Label
	}
	return labels
}

// CountLabels returns the number of distinct labels.
func CountLabels(labels []uint8) int {
	var seen [256]bool
	count := 0
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			count++
		}
	}
	return count
}

// Histogram returns the number of occurrences of each label in [0, numLabels).
// It returns an error if a label is out of range.
func Histogram(labels []uint8, numLabels int) ([]int, error) {
	hist := make([]int, numLabels)
	for i, l := range labels {
		if int(l) >= numLabels {
			return nil, fmt.Errorf("sample %d: label %d not in [0, %d)", i, l, numLabels)
		}
		hist[l]++
	}
	return hist, nil
}
