package main

import (
	"flag"
	"fmt"

	"github.com/wisardfhe/tfhe-lut/math/csprng"
	"github.com/wisardfhe/tfhe-lut/math/num"
	"github.com/wisardfhe/tfhe-lut/tfhe"
)

// schemeOptions are the encryption parameters of a run.
type schemeOptions struct {
	Sigma   float64
	L       int
	BgBit   int
	UpperN  int
	T       int
	BaseBit int
	XOF     string
}

func (o *schemeOptions) register(fs *flag.FlagSet) {
	def := tfhe.ParamsWiSARD
	fs.Float64Var(&o.Sigma, "sigma", def.GLWEStdDev, "standard deviation of GLWE noise, relative to the torus")
	fs.IntVar(&o.L, "l", def.GGSWParameters.Level, "GGSW decomposition levels")
	fs.IntVar(&o.BgBit, "bg-bit", num.Log2(def.GGSWParameters.Base), "GGSW decomposition base bits")
	fs.IntVar(&o.UpperN, "upper-n", def.PolyDegree, "polynomial degree N")
	fs.IntVar(&o.T, "t", def.PackingKeySwitchParameters.Level, "packing key switching levels")
	fs.IntVar(&o.BaseBit, "base-bit", num.Log2(def.PackingKeySwitchParameters.Base), "packing key switching base bits")
	fs.StringVar(&o.XOF, "xof", def.XOF.String(), "randomness source: blake2b, shake256, blake3")
}

// validate checks the bounds accepted by the command.
func (o *schemeOptions) validate() error {
	switch {
	case !(o.Sigma > 0 && o.Sigma < 1):
		return fmt.Errorf("sigma %v not in (0, 1)", o.Sigma)
	case !num.IsPowerOfTwo(o.UpperN):
		return fmt.Errorf("upper-n %d not a power of two", o.UpperN)
	case o.UpperN < 512 || o.UpperN > 4096:
		return fmt.Errorf("upper-n %d not in [512, 4096]", o.UpperN)
	case o.L < 1 || o.L > 54:
		return fmt.Errorf("l %d not in [1, 54]", o.L)
	case o.BgBit < 1 || o.BgBit > 54:
		return fmt.Errorf("bg-bit %d not in [1, 54]", o.BgBit)
	case o.L*o.BgBit > 54:
		return fmt.Errorf("l * bg-bit = %d not in [1, 54]", o.L*o.BgBit)
	case o.T < 1 || o.T > 54:
		return fmt.Errorf("t %d not in [1, 54]", o.T)
	case o.BaseBit < 1 || o.BaseBit > 54:
		return fmt.Errorf("base-bit %d not in [1, 54]", o.BaseBit)
	case o.T*o.BaseBit > 54:
		return fmt.Errorf("t * base-bit = %d not in [1, 54]", o.T*o.BaseBit)
	}
	_, err := csprng.ParseXOF(o.XOF)
	return err
}

// literal returns the parameters selected by o.
// The standalone LWE key and its key switching gadget are those of ParamsWiSARD.
func (o *schemeOptions) literal() (tfhe.ParametersLiteral, error) {
	if err := o.validate(); err != nil {
		return tfhe.ParametersLiteral{}, err
	}
	xof, _ := csprng.ParseXOF(o.XOF)

	p := tfhe.ParamsWiSARD
	p.PolyDegree = o.UpperN
	p.GLWEStdDev = o.Sigma
	p.GGSWParameters = tfhe.GadgetParametersLiteral{Base: 1 << o.BgBit, Level: o.L}
	p.PackingKeySwitchParameters = tfhe.GadgetParametersLiteral{Base: 1 << o.BaseBit, Level: o.T}
	p.XOF = xof

	if err := p.Validate(); err != nil {
		return tfhe.ParametersLiteral{}, err
	}
	return p, nil
}
