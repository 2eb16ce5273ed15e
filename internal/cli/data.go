package cli

import (
	"fmt"
	"log"

	"github.com/wisardfhe/tfhe-lut/lut"
	"github.com/wisardfhe/tfhe-lut/wisard"
)

// Data is an encoded train and test set.
type Data struct {
	TrainAddrs []lut.Address
	TestAddrs  []lut.Address
	TestLabels []uint8

	InputSize int
	NumLuts   int
	NumLabels int
	Weights   []float64
}

// Load reads, encodes and addresses the train and test sets of o.
// It reports the dataset parameters to logger if Verbose is set.
func Load(o *Options, logger *log.Logger) (*Data, error) {
	therm, err := o.Thermometer()
	if err != nil {
		return nil, err
	}
	seed, err := o.SeedBytes()
	if err != nil {
		return nil, err
	}
	encoder := wisard.NewEncoder(o.Slice(), therm, seed)

	train, err := wisard.LoadCSV(o.TrainData)
	if err != nil {
		return nil, fmt.Errorf("train set: %w", err)
	}
	train = wisard.Window(train, o.TrainSkip, o.TrainLimit)
	if len(train) == 0 {
		return nil, fmt.Errorf("train set: no samples")
	}

	test, err := wisard.LoadCSV(o.TestData)
	if err != nil {
		return nil, fmt.Errorf("test set: %w", err)
	}
	test = wisard.Window(test, o.TestSkip, o.TestLimit)

	d := &Data{
		TestLabels: wisard.Labels(test),
		InputSize:  encoder.InputSize(len(train[0].Values)),
	}

	trainLabels := wisard.Labels(train)
	d.NumLabels = o.NumLabels
	if d.NumLabels == 0 {
		d.NumLabels = wisard.CountLabels(trainLabels)
	}

	hist, err := wisard.Histogram(trainLabels, d.NumLabels)
	if err != nil {
		return nil, fmt.Errorf("train set: %w", err)
	}
	d.Weights = wisard.LabelWeights(hist)

	if d.TrainAddrs, d.NumLuts, err = wisard.EncodeDataset(encoder, train, o.AddressSize); err != nil {
		return nil, fmt.Errorf("train set: %w", err)
	}

	numLuts := 0
	if d.TestAddrs, numLuts, err = wisard.EncodeDataset(encoder, test, o.AddressSize); err != nil {
		return nil, fmt.Errorf("test set: %w", err)
	}
	if len(test) > 0 && numLuts != d.NumLuts {
		return nil, fmt.Errorf("test set: %d tables, train set %d", numLuts, d.NumLuts)
	}
	for i, l := range d.TestLabels {
		if int(l) >= d.NumLabels {
			return nil, fmt.Errorf("test set: sample %d: label %d not in [0, %d)", i, l, d.NumLabels)
		}
	}

	if o.Verbose && logger != nil {
		logger.Printf("Label Weights: %v", d.Weights)
		logger.Printf("Input size: %d", d.InputSize)
		logger.Printf("Addr. size: %d", o.AddressSize)
		logger.Printf("LUTs/label: %d", d.NumLuts)
		logger.Printf("Nr. labels: %d", d.NumLabels)
	}
	return d, nil
}

// Scorer returns the scorer configured by o for d.
// Weights are only set when Balance is.
func (o *Options) Scorer(d *Data) wisard.Scorer {
	act, _ := wisard.ParseActivation(o.Activation)
	s := wisard.Scorer{
		NumLabels:  d.NumLabels,
		NumLuts:    d.NumLuts,
		CountBits:  o.CounterSize,
		Threshold:  o.Threshold,
		Activation: act,
	}
	if o.Balance {
		s.Weights = d.Weights
	}
	return s
}

// OutputMode returns the configured output.
func (o *Options) OutputMode() wisard.Output {
	out, _ := wisard.ParseOutput(o.Output)
	return out
}
