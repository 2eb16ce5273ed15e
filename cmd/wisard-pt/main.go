// Command wisard-pt trains and evaluates a plaintext WiSARD classifier.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/profile"
	"github.com/wisardfhe/tfhe-lut/internal/cli"
	"github.com/wisardfhe/tfhe-lut/wisard"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("error: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	var opts cli.Options
	fs := flag.NewFlagSet("wisard-pt", flag.ContinueOnError)
	opts.Register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	if opts.Verbose {
		log.Printf("Arguments: %+v", opts)
	}
	if opts.CPUProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.CPUProfile), profile.Quiet).Stop()
	}

	logger := log.Default()
	data, err := cli.Load(&opts, logger)
	if err != nil {
		return err
	}

	model := wisard.NewModel(data.NumLabels, data.NumLuts, opts.AddressSize)
	if err := model.Train(data.TrainAddrs); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if opts.Verbose {
		logger.Printf("Max. count: %d", model.MaxCount())
	}

	counters, err := model.Read(data.TestAddrs)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	scores := opts.Scorer(data).Scores(counters)
	return wisard.Report(stdout, opts.OutputMode(), scores, data.TestLabels, data.NumLabels)
}
