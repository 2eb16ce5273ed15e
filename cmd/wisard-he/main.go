// Command wisard-he trains and evaluates a WiSARD classifier whose lookup tables,
// addresses and counters are encrypted.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/profile"
	"github.com/wisardfhe/tfhe-lut/internal/cli"
	"github.com/wisardfhe/tfhe-lut/lut"
	"github.com/wisardfhe/tfhe-lut/math/poly"
	"github.com/wisardfhe/tfhe-lut/store"
	"github.com/wisardfhe/tfhe-lut/tfhe"
	"github.com/wisardfhe/tfhe-lut/wisard"
)

func main() {
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("error: %v", err)
	}
}

type options struct {
	cli.Options
	scheme schemeOptions

	reencrypt bool
	storeURL  string
	save      bool
	model     string
}

func parse(args []string) (*options, error) {
	var opts options
	fs := flag.NewFlagSet("wisard-he", flag.ContinueOnError)
	opts.Register(fs)
	opts.scheme.register(fs)
	fs.BoolVar(&opts.reencrypt, "reencrypt", false, "decrypt, round and encrypt the trained tables again")
	fs.StringVar(&opts.storeURL, "store", "", "blob store for keys and tables: mem://, file:///dir, redis://host:port/db")
	fs.BoolVar(&opts.save, "save", false, "save the trained model to -store and print its handle")
	fs.StringVar(&opts.model, "model", "", "handle of a saved model in -store, replacing key generation and training")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := opts.scheme.validate(); err != nil {
		return nil, err
	}
	if (opts.save || opts.model != "") && opts.storeURL == "" {
		return nil, fmt.Errorf("-save and -model require -store")
	}
	return &opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parse(args)
	if err != nil {
		return err
	}

	logger := log.Default()
	if opts.Verbose {
		logger.Printf("Arguments: %+v", *opts)
	}
	if opts.CPUProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.CPUProfile), profile.Quiet).Stop()
	}

	data, err := cli.Load(&opts.Options, logger)
	if err != nil {
		return err
	}

	var s store.Store
	if opts.storeURL != "" {
		if s, err = store.Open(ctx, opts.storeURL); err != nil {
			return err
		}
		defer s.Close()
	}

	var m *cli.Model
	if opts.model != "" {
		if m, err = loadModel(ctx, s, opts.model, data); err != nil {
			return err
		}
	} else {
		lit, err := opts.scheme.literal()
		if err != nil {
			return err
		}
		m = &cli.Model{
			Parameters:  lit,
			AddressSize: opts.AddressSize,
			NumLabels:   data.NumLabels,
			NumLuts:     data.NumLuts,
			CountBits:   opts.CounterSize,
		}
	}

	params := m.Parameters.Compile()
	layout, err := lut.NewLayout(m.AddressSize, m.NumLabels, params.PolyDegree())
	if err != nil {
		return err
	}
	if opts.Verbose {
		logger.Printf("Backend: %s", poly.Backend())
		logger.Printf("%v\n", layout)
	}

	var enc *tfhe.Encryptor
	if opts.model != "" {
		enc = tfhe.NewEncryptorWithKey(params, m.SecretKey)
	} else {
		enc = tfhe.NewEncryptor(params)
		m.SecretKey = enc.SecretKey
		m.EvaluationKey = tfhe.EvaluationKey{PackingKeySwitchKey: enc.GenPackingKeySwitchKeyParallel()}
	}
	eval := tfhe.NewEvaluator(params, m.EvaluationKey)

	p := lut.NewPipeline(layout, enc, eval, m.CountBits)
	p.Workers = opts.Threads
	p.Logger = logger
	p.TrackNoise = opts.Verbose

	if opts.model == "" {
		if m.Table, err = p.Train(ctx, data.TrainAddrs, data.NumLuts); err != nil {
			return err
		}
		if opts.reencrypt {
			if m.Table, err = p.Reencrypt(ctx, m.Table); err != nil {
				return err
			}
		}
	}

	if opts.save {
		h, err := cli.SaveModel(ctx, s, m)
		if err != nil {
			return err
		}
		logger.Printf("Model: %v", h)
	}

	packed, err := p.Infer(ctx, m.Table, data.TestAddrs)
	if err != nil {
		return err
	}
	counters := p.Decrypt(packed, len(data.TestAddrs)*m.NumLabels)

	scorer := opts.Scorer(data)
	scorer.CountBits = m.CountBits
	return wisard.Report(stdout, opts.OutputMode(), scorer.Scores(counters), data.TestLabels, data.NumLabels)
}

// loadModel loads the model with handle from s, and checks that it can score data.
func loadModel(ctx context.Context, s store.Store, handle string, data *cli.Data) (*cli.Model, error) {
	h, err := store.ParseHandle(handle)
	if err != nil {
		return nil, err
	}
	m, err := cli.LoadModel(ctx, s, h)
	if err != nil {
		return nil, err
	}
	if m.NumLabels != data.NumLabels || m.NumLuts != data.NumLuts {
		return nil, fmt.Errorf("model has %d labels and %d tables, dataset %d and %d",
			m.NumLabels, m.NumLuts, data.NumLabels, data.NumLuts)
	}
	return m, nil
}
