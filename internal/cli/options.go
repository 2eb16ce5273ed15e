// Package cli holds the options and dataset preparation shared by the WiSARD commands.
package cli

import (
	"crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"runtime"
	"strconv"

	"github.com/wisardfhe/tfhe-lut/lut"
	"github.com/wisardfhe/tfhe-lut/wisard"
)

// Options are the dataset, encoding and scoring options of a WiSARD run.
type Options struct {
	NumLabels int

	DataBits  int
	DataLimit int
	DataSkip  int

	TrainData  string
	TrainLimit int
	TrainSkip  int

	TestData  string
	TestLimit int
	TestSkip  int

	AddressSize int
	CounterSize int
	ThermSize   int
	ThermType   string
	Activation  string
	Threshold   uint64
	Seed        string

	Output     string
	Threads    int
	Balance    bool
	Verbose    bool
	CPUProfile string
}

// Register defines a flag for every option in fs.
func (o *Options) Register(fs *flag.FlagSet) {
	fs.IntVar(&o.NumLabels, "num-labels", 0, "number of labels (default: distinct labels of the train set)")

	fs.IntVar(&o.DataBits, "data-bits", 8, "bits per input value")
	fs.IntVar(&o.DataLimit, "data-limit", 0, "bits kept per value (default: data-bits)")
	fs.IntVar(&o.DataSkip, "data-skip", 0, "low bits dropped from each value")

	fs.StringVar(&o.TrainData, "train-data", "", "train set (CSV, optionally xz or gzip compressed)")
	fs.IntVar(&o.TrainLimit, "train-limit", math.MaxInt32, "maximum number of train samples")
	fs.IntVar(&o.TrainSkip, "train-skip", 0, "train samples to skip")

	fs.StringVar(&o.TestData, "test-data", "", "test set (CSV, optionally xz or gzip compressed)")
	fs.IntVar(&o.TestLimit, "test-limit", math.MaxInt32, "maximum number of test samples")
	fs.IntVar(&o.TestSkip, "test-skip", 0, "test samples to skip")

	fs.IntVar(&o.AddressSize, "address-size", 0, "address bits per lookup table")
	fs.IntVar(&o.CounterSize, "counter-size", 0, "bits per counter")
	fs.IntVar(&o.ThermSize, "therm-size", 0, "thermometer bits per value")
	fs.StringVar(&o.ThermType, "therm-type", "linear", "thermometer type: linear, log")
	fs.StringVar(&o.Activation, "activation", "binary", "activation: binary, linear, log, bounded-log")
	fs.Uint64Var(&o.Threshold, "threshold", 0, "value subtracted from every counter")
	fs.StringVar(&o.Seed, "seed", "", "permutation seed (default: random)")

	fs.StringVar(&o.Output, "output", "accuracy", "output: accuracy, predictions, scores")
	fs.IntVar(&o.Threads, "threads", runtime.NumCPU(), "worker goroutines")
	fs.BoolVar(&o.Balance, "balance", false, "scale counters by inverse label frequency")
	fs.BoolVar(&o.Verbose, "verbose", false, "report parameters and progress")
	fs.StringVar(&o.CPUProfile, "cpuprofile", "", "write a CPU profile to this directory")
}

// Validate checks the options that do not depend on the dataset.
func (o *Options) Validate() error {
	switch {
	case o.TrainData == "" || o.TestData == "":
		return fmt.Errorf("both -train-data and -test-data are required")
	case o.NumLabels < 0 || o.NumLabels > lut.MaxLabels:
		return fmt.Errorf("num-labels %d not in [0, %d]", o.NumLabels, lut.MaxLabels)
	case o.DataBits < 1 || o.DataBits > 8:
		return fmt.Errorf("data-bits %d not in [1, 8]", o.DataBits)
	case o.AddressSize < 1 || o.AddressSize > lut.MaxAddressSize:
		return fmt.Errorf("address-size %d not in [1, %d]", o.AddressSize, lut.MaxAddressSize)
	case o.CounterSize < 1 || o.CounterSize > 32:
		return fmt.Errorf("counter-size %d not in [1, 32]", o.CounterSize)
	case o.ThermSize < 1:
		return fmt.Errorf("therm-size %d not positive", o.ThermSize)
	case o.Threads < 1:
		return fmt.Errorf("threads %d not positive", o.Threads)
	case o.TrainLimit < 0 || o.TrainSkip < 0 || o.TestLimit < 0 || o.TestSkip < 0:
		return fmt.Errorf("negative sample limit or skip")
	}

	if err := o.Slice().Validate(o.DataBits); err != nil {
		return fmt.Errorf("data-skip, data-limit: %w", err)
	}
	if _, err := o.Thermometer(); err != nil {
		return err
	}
	if _, err := wisard.ParseActivation(o.Activation); err != nil {
		return err
	}
	if _, err := wisard.ParseOutput(o.Output); err != nil {
		return err
	}
	if _, err := o.SeedBytes(); err != nil {
		return err
	}
	return nil
}

// Slice returns the bit range kept from each value.
func (o *Options) Slice() wisard.Slice {
	limit := o.DataLimit
	if limit == 0 {
		limit = o.DataBits
	}
	return wisard.Slice{Start: o.DataSkip, End: o.DataSkip + limit}
}

// Thermometer returns the configured thermometer.
func (o *Options) Thermometer() (wisard.Thermometer, error) {
	return wisard.ParseThermometer(o.ThermType, o.ThermSize)
}

// SeedBytes returns the permutation seed, expanded to 32 bytes by repeating its little-endian encoding.
// An empty seed is drawn at random, and stored back in o.
func (o *Options) SeedBytes() ([]byte, error) {
	if o.Seed == "" {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			return nil, err
		}
		o.Seed = strconv.FormatUint(binary.LittleEndian.Uint64(b[:]), 10)
	}

	seed, err := strconv.ParseUint(o.Seed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return ExpandSeed(seed), nil
}

// ExpandSeed repeats the little-endian encoding of seed to fill 32 bytes.
func ExpandSeed(seed uint64) []byte {
	b := make([]byte, 32)
	for i := 0; i < len(b); i += 8 {
		binary.LittleEndian.PutUint64(b[i:], seed)
	}
	return b
}
