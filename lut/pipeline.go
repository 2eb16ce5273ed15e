package lut

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/wisardfhe/tfhe-lut/math/num"
	"github.com/wisardfhe/tfhe-lut/tfhe"
)

// NoiseReport holds the noise measured by an inference with noise tracking.
type NoiseReport struct {
	// PostTrain compares the trained counters with their rounded values.
	PostTrain tfhe.NoiseStats
	// PostInference compares the extracted counters with the rounded trained counters.
	PostInference tfhe.NoiseStats
	// PostKeySwitch compares the packed counters with the rounded trained counters.
	PostKeySwitch tfhe.NoiseStats
}

// Pipeline trains and queries encrypted lookup tables in parallel.
//
// Each worker owns shallow copies of Encryptor and Evaluator.
// Keys are shared between workers and never written.
type Pipeline struct {
	// Parameters holds the parameters of every ciphertext.
	Parameters tfhe.Parameters
	// Layout holds the layout of every table.
	Layout Layout

	// Encryptor encrypts the address bits.
	// Its secret key is also used by Reencrypt, Decrypt and noise tracking.
	Encryptor *tfhe.Encryptor
	// Evaluator evaluates the gates.
	// It must hold a PackingKeySwitchKey for Infer.
	Evaluator *tfhe.Evaluator

	// Workers is the number of worker goroutines.
	// If zero, runtime.NumCPU() is used.
	Workers int
	// CountBits is the number of bits of each counter.
	CountBits int

	// Logger reports progress. If nil, nothing is logged.
	Logger *log.Logger
	// TrackNoise enables noise measurements in Infer.
	TrackNoise bool

	// Noise holds the measurements of the last Infer with TrackNoise set.
	Noise NoiseReport
}

// NewPipeline returns a Pipeline using all CPUs.
func NewPipeline(layout Layout, enc *tfhe.Encryptor, eval *tfhe.Evaluator, countBits int) *Pipeline {
	return &Pipeline{
		Parameters: enc.Parameters,
		Layout:     layout,
		Encryptor:  enc,
		Evaluator:  eval,
		Workers:    runtime.NumCPU(),
		CountBits:  countBits,
	}
}

// Validate checks if the pipeline is well-formed.
func (p *Pipeline) Validate() error {
	switch {
	case p.Encryptor == nil || p.Evaluator == nil:
		return errors.New("missing encryptor or evaluator")
	case p.Workers < 0:
		return fmt.Errorf("worker count %d negative", p.Workers)
	case p.CountBits < 1 || p.CountBits > 63:
		return fmt.Errorf("counter size %d not in [1, 63]", p.CountBits)
	case p.Layout.PolyDegree != p.Parameters.PolyDegree():
		return fmt.Errorf("layout degree %d, parameters degree %d", p.Layout.PolyDegree, p.Parameters.PolyDegree())
	}
	return nil
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}

// workerCount returns the number of workers for n jobs.
func (p *Pipeline) workerCount(n int) int {
	workers := p.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(workers, n))
}

// pool returns workers shallow copies of Encryptor and Evaluator.
func (p *Pipeline) pool(workers int) ([]*tfhe.Encryptor, []*tfhe.Evaluator) {
	encs := make([]*tfhe.Encryptor, workers)
	evals := make([]*tfhe.Evaluator, workers)
	for w := 0; w < workers; w++ {
		encs[w] = p.Encryptor.ShallowCopy()
		evals[w] = p.Evaluator.ShallowCopy()
	}
	return encs, evals
}

// parallel runs job(w, i) for every i in [0, n) on workers goroutines,
// where w identifies the goroutine.
// It stops handing out jobs once ctx is done, and returns ctx.Err().
func parallel(ctx context.Context, workers, n int, job func(w, i int)) error {
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := range jobs {
				job(w, i)
			}
		}(w)
	}

	var err error
feed:
	for i := 0; i < n; i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return err
}

// Train accumulates one count for every address into slots tables.
// Each worker accumulates into its own tables, which are merged at the end.
func (p *Pipeline) Train(ctx context.Context, addrs []Address, slots int) (Table, error) {
	if err := p.Validate(); err != nil {
		return Table{}, err
	}
	for i, a := range addrs {
		if err := p.Layout.CheckAddress(a); err != nil {
			return Table{}, fmt.Errorf("address %d: %w", i, err)
		}
		if int(a.Index) >= slots {
			return Table{}, fmt.Errorf("address %d: %w: index %d, %d slots", i, ErrAddress, a.Index, slots)
		}
	}

	workers := p.workerCount(len(addrs))
	encs, evals := p.pool(workers)
	locals := make([]Table, workers)
	masks := make([][]tfhe.GLWECiphertext, workers)
	for w := 0; w < workers; w++ {
		locals[w] = NewTable(p.Parameters, p.Layout, slots)
		masks[w] = tfhe.NewTrivialGLWEArray(p.Parameters, p.Layout.Count)
	}

	p.logf("Training %d addresses on %d workers...", len(addrs), workers)
	begin := time.Now()

	err := parallel(ctx, workers, len(addrs), func(w, i int) {
		a := addrs[i]
		addrLabel := p.Layout.AddressLabel(int(a.Label), a.Addr)
		bits := encs[w].EncryptFourierGGSWBits(addrLabel, p.Layout.AddressLabelSize)

		WriteMaskAssign(evals[w], p.Layout, p.CountBits, bits, masks[w])

		slot := locals[w].Slots[a.Index]
		for j := range slot {
			evals[w].AddGLWEAssign(slot[j], masks[w][j], slot[j])
		}
	})
	if err != nil {
		return Table{}, err
	}

	table := NewTable(p.Parameters, p.Layout, slots)
	for _, local := range locals {
		table.AddAssign(p.Evaluator, local)
	}

	p.logf("Training complete. Elapsed time (ms): %d.", time.Since(begin).Milliseconds())
	return table, nil
}

// Reencrypt decrypts every counter of table, rounds it to CountBits bits,
// and encrypts it again with fresh noise.
func (p *Pipeline) Reencrypt(ctx context.Context, table Table) (Table, error) {
	if err := p.Validate(); err != nil {
		return Table{}, err
	}

	count := table.Count()
	tOut := Table{Slots: make([][]tfhe.GLWECiphertext, len(table.Slots))}
	for i := range tOut.Slots {
		tOut.Slots[i] = make([]tfhe.GLWECiphertext, count)
	}

	n := len(table.Slots) * count
	workers := p.workerCount(n)
	encs, _ := p.pool(workers)

	p.logf("Performing re-encryption...")

	err := parallel(ctx, workers, n, func(w, i int) {
		slot, j := i/count, i%count
		pt := encs[w].DecryptGLWE(table.Slots[slot][j])
		for k, c := range pt.Coeffs {
			pt.Coeffs[k] = uint64(tfhe.MustFromUnsigned(tfhe.Torus(c).IntoUnsigned(p.CountBits), p.CountBits))
		}
		tOut.Slots[slot][j] = encs[w].EncryptGLWE(pt)
	})
	if err != nil {
		return Table{}, err
	}

	p.logf("Re-encryption complete.")
	return tOut, nil
}

// Infer reads the counters of every address under every label from table,
// and packs them into GLWE ciphertexts.
//
// Addresses are processed in chunks of PolyDegree.
// The counter of addrs[i] under label l is coefficient (i*NumLabels + l) of the concatenated result,
// so that each chunk fills NumLabels ciphertexts, except the last one.
// The label of each address is ignored.
func (p *Pipeline) Infer(ctx context.Context, table Table, addrs []Address) ([]tfhe.GLWECiphertext, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if table.Count() != p.Layout.Count && len(table.Slots) > 0 {
		return nil, fmt.Errorf("table has %d polynomials per slot, layout has %d", table.Count(), p.Layout.Count)
	}
	for i, a := range addrs {
		if uint64(a.Addr) >= 1<<p.Layout.AddressSize || int(a.Index) >= len(table.Slots) {
			return nil, fmt.Errorf("address %d: %w: index %d, address %d", i, ErrAddress, a.Index, a.Addr)
		}
	}

	N := p.Layout.PolyDegree
	L := p.Layout.NumLabels
	numResults := L * len(addrs)
	packed := make([]tfhe.GLWECiphertext, num.DivRoundUp(numResults, N))

	workers := p.workerCount(min(len(addrs), N))
	encs, evals := p.pool(workers)
	bufs := make([][]tfhe.GLWECiphertext, workers)
	for w := range bufs {
		bufs[w] = tfhe.NewTrivialGLWEArray(p.Parameters, p.Layout.UpperTableSize)
	}

	var tracker *noiseTracker
	if p.TrackNoise {
		tracker = newNoiseTracker(numResults)
	}

	p.logf("Evaluating %d addresses on %d workers...", len(addrs), workers)
	begin := time.Now()

	for c := 0; c*N < len(addrs); c++ {
		chunk := addrs[c*N : min((c+1)*N, len(addrs))]
		base := c * N * L

		results := make([]tfhe.LWECiphertext, len(chunk)*L)
		for i := range results {
			results[i] = tfhe.NewLWECiphertextCustom(p.Parameters.GLWEDimension())
		}

		err := parallel(ctx, workers, len(chunk), func(w, i int) {
			a := chunk[i]
			bits := encs[w].EncryptFourierGGSWBits(uint64(a.Addr), p.Layout.AddressSize)
			for label := 0; label < L; label++ {
				r := i*L + label
				readCounterAssign(evals[w], p.Layout, table.Slots[a.Index], label, bits, bufs[w], results[r])
				if tracker != nil {
					tracker.read(encs[w], p.Layout, p.CountBits, table, a, label, results[r], base+r)
				}
			}
		})
		if err != nil {
			return nil, err
		}

		packCount := num.DivRoundUp(len(results), N)
		err = parallel(ctx, min(workers, packCount), packCount, func(w, i int) {
			skip := i * N
			offset := min(len(results)-skip, N)
			packed[c*L+i] = evals[w].PackingKeySwitch(results, skip, offset)
			if tracker != nil {
				tracker.pack(encs[w], packed[c*L+i], base+skip, offset)
			}
		})
		if err != nil {
			return nil, err
		}
	}

	p.logf("Evaluation complete. Elapsed time (ms): %d.", time.Since(begin).Milliseconds())

	if tracker != nil {
		p.Noise = tracker.report()
		p.logf("Post-Training Variance: %e", p.Noise.PostTrain.Variance)
		p.logf("Post-Inference Variance: %e", p.Noise.PostInference.Variance)
		p.logf("Post-Keyswitch Variance: %e", p.Noise.PostKeySwitch.Variance)
	}

	return packed, nil
}

// Decrypt decrypts the first count counters of packed, rounded to CountBits bits.
func (p *Pipeline) Decrypt(packed []tfhe.GLWECiphertext, count int) []uint64 {
	counters := make([]uint64, 0, count)
	for _, ct := range packed {
		pt := p.Encryptor.DecryptGLWE(ct)
		for _, c := range pt.Coeffs {
			if len(counters) == count {
				return counters
			}
			counters = append(counters, tfhe.Torus(c).IntoUnsigned(p.CountBits))
		}
	}
	return counters
}

// noiseTracker records phases of every result of an inference.
// Each result index is written by exactly one worker.
type noiseTracker struct {
	expected  []tfhe.Torus
	trained   []tfhe.Torus
	inferred  []tfhe.Torus
	keySwitch []tfhe.Torus
}

func newNoiseTracker(n int) *noiseTracker {
	return &noiseTracker{
		expected:  make([]tfhe.Torus, n),
		trained:   make([]tfhe.Torus, n),
		inferred:  make([]tfhe.Torus, n),
		keySwitch: make([]tfhe.Torus, n),
	}
}

// read records the trained counter of a under label, and its extracted value ct.
func (t *noiseTracker) read(enc *tfhe.Encryptor, layout Layout, countBits int, table Table, a Address, label int, ct tfhe.LWECiphertext, r int) {
	polyIdx, coeffIdx := layout.Locate(label, a.Addr)
	trained := enc.DecryptLWELarge(table.Slots[a.Index][polyIdx].ToLWECiphertext(coeffIdx))

	t.trained[r] = trained
	t.expected[r] = tfhe.MustFromUnsigned(trained.IntoUnsigned(countBits), countBits)
	t.inferred[r] = enc.DecryptLWELarge(ct)
}

// pack records the first offset coefficients of ct, starting from result r.
func (t *noiseTracker) pack(enc *tfhe.Encryptor, ct tfhe.GLWECiphertext, r, offset int) {
	pt := enc.DecryptGLWE(ct)
	for j := 0; j < offset; j++ {
		t.keySwitch[r+j] = tfhe.Torus(pt.Coeffs[j])
	}
}

func (t *noiseTracker) report() NoiseReport {
	return NoiseReport{
		PostTrain:     tfhe.MeasureNoise(t.trained, t.expected),
		PostInference: tfhe.MeasureNoise(t.inferred, t.expected),
		PostKeySwitch: tfhe.MeasureNoise(t.keySwitch, t.expected),
	}
}
