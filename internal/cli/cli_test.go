package cli_test

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wisardfhe/tfhe-lut/internal/cli"
	"github.com/wisardfhe/tfhe-lut/lut"
	"github.com/wisardfhe/tfhe-lut/store"
	"github.com/wisardfhe/tfhe-lut/tfhe"
	"github.com/wisardfhe/tfhe-lut/wisard"
)

// writeDataset writes a CSV file of n samples with values in [0, 256) and labels in [0, numLabels).
func writeDataset(t *testing.T, name string, n, numValues, numLabels int) string {
	var b strings.Builder
	b.WriteString("label")
	for j := 0; j < numValues; j++ {
		fmt.Fprintf(&b, ",p%d", j)
	}
	b.WriteString("\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d", i%numLabels)
		for j := 0; j < numValues; j++ {
			fmt.Fprintf(&b, ",%d", (i*37+j*91)%256)
		}
		b.WriteString("\n")
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func parseOptions(t *testing.T, args ...string) *cli.Options {
	var o cli.Options
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	o.Register(fs)
	require.NoError(t, fs.Parse(args))
	return &o
}

func TestOptions(t *testing.T) {
	base := []string{"-train-data", "a.csv", "-test-data", "b.csv", "-address-size", "4", "-counter-size", "4", "-therm-size", "3"}

	o := parseOptions(t, base...)
	require.NoError(t, o.Validate())
	assert.NotEmpty(t, o.Seed)
	assert.Equal(t, wisard.Slice{Start: 0, End: 8}, o.Slice())
	assert.Equal(t, wisard.OutputAccuracy, o.OutputMode())

	o = parseOptions(t, append(base, "-data-skip", "2", "-data-limit", "3", "-seed", "7")...)
	require.NoError(t, o.Validate())
	assert.Equal(t, wisard.Slice{Start: 2, End: 5}, o.Slice())
	seed, err := o.SeedBytes()
	require.NoError(t, err)
	assert.Equal(t, cli.ExpandSeed(7), seed)

	invalid := [][]string{
		{"-address-size", "0"},
		{"-address-size", "33"},
		{"-counter-size", "0"},
		{"-therm-size", "0"},
		{"-therm-type", "cubic"},
		{"-activation", "relu"},
		{"-output", "json"},
		{"-data-skip", "6", "-data-limit", "4"},
		{"-data-bits", "9"},
		{"-num-labels", "257"},
		{"-threads", "0"},
		{"-seed", "-1"},
	}
	for _, args := range invalid {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			assert.Error(t, parseOptions(t, append(base, args...)...).Validate())
		})
	}

	assert.Error(t, parseOptions(t, base[2:]...).Validate())
}

func TestExpandSeed(t *testing.T) {
	seed := cli.ExpandSeed(0x0102030405060708)
	require.Len(t, seed, 32)
	for i := 0; i < 32; i += 8 {
		assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, seed[i:i+8])
	}
}

func TestLoad(t *testing.T) {
	train := writeDataset(t, "train.csv", 9, 5, 3)
	test := writeDataset(t, "test.csv", 4, 5, 3)

	o := parseOptions(t, "-train-data", train, "-test-data", test,
		"-address-size", "4", "-counter-size", "4", "-therm-size", "3", "-seed", "1", "-verbose", "-balance", "-train-skip", "1")
	require.NoError(t, o.Validate())

	var buf bytes.Buffer
	d, err := cli.Load(o, log.New(&buf, "", 0))
	require.NoError(t, err)

	assert.Equal(t, 3, d.NumLabels)
	assert.Equal(t, 15, d.InputSize)
	assert.Equal(t, 4, d.NumLuts)
	assert.Len(t, d.TrainAddrs, 8*d.NumLuts)
	assert.Len(t, d.TestAddrs, 4*d.NumLuts)
	assert.Equal(t, []uint8{0, 1, 2, 0}, d.TestLabels)
	assert.Equal(t, []float64{1.5, 1, 1}, d.Weights)
	assert.Contains(t, buf.String(), "LUTs/label: 4")

	s := o.Scorer(d)
	assert.Equal(t, d.Weights, s.Weights)
	assert.Equal(t, 4, s.CountBits)

	t.Run("LabelOutOfRange", func(t *testing.T) {
		o := *o
		o.NumLabels = 2
		_, err := cli.Load(&o, nil)
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		o := *o
		o.TrainData = filepath.Join(t.TempDir(), "missing.csv")
		_, err := cli.Load(&o, nil)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestModel(t *testing.T) {
	ctx := context.Background()
	params := tfhe.ParamsTest.Compile()
	enc := tfhe.NewEncryptor(params)

	layout, err := lut.NewLayout(3, 2, params.PolyDegree())
	require.NoError(t, err)

	m := &cli.Model{
		Parameters:    tfhe.ParamsTest,
		SecretKey:     enc.SecretKey,
		EvaluationKey: tfhe.EvaluationKey{PackingKeySwitchKey: enc.GenPackingKeySwitchKey()},
		Table:         lut.NewTable(params, layout, 2),
		AddressSize:   3,
		NumLabels:     2,
		NumLuts:       2,
		CountBits:     4,
	}
	m.Table.Slots[1][0] = enc.EncryptGLWE(enc.DecryptGLWE(m.Table.Slots[1][0]))

	s := store.NewMemoryStore()
	h, err := cli.SaveModel(ctx, s, m)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())

	loaded, err := cli.LoadModel(ctx, s, h)
	require.NoError(t, err)
	assert.True(t, cmp.Equal(m.Parameters, loaded.Parameters))
	assert.True(t, cmp.Equal(m.Table, loaded.Table))
	assert.True(t, cmp.Equal(m.EvaluationKey, loaded.EvaluationKey, cmp.AllowUnexported(tfhe.GadgetParameters{})))
	assert.Equal(t, m.SecretKey.LWELargeKey, loaded.SecretKey.LWELargeKey)
	assert.Equal(t, m.CountBits, loaded.CountBits)

	t.Run("Missing", func(t *testing.T) {
		_, err := cli.LoadModel(ctx, s, store.ComputeHandle([]byte("nothing")))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
