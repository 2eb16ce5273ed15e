package tfhe

import (
	"errors"
	"fmt"

	"github.com/wisardfhe/tfhe-lut/math/csprng"
	"github.com/wisardfhe/tfhe-lut/math/num"
	"github.com/wisardfhe/tfhe-lut/math/poly"
)

// GadgetParametersLiteral is a structure for Gadget Decomposition,
// which is used in GGSW encryption and key switching.
type GadgetParametersLiteral struct {
	// Base is a base of gadget. It must be a power of two.
	Base uint64
	// Level is a length of gadget.
	Level int
}

// Validate checks if the parameters are valid.
func (p GadgetParametersLiteral) Validate() error {
	switch {
	case !num.IsPowerOfTwo(p.Base) || p.Base < 2:
		return fmt.Errorf("base %v not a power of two larger than one", p.Base)
	case p.Base > 1<<30:
		return fmt.Errorf("base %v larger than 2^30", p.Base)
	case p.Level <= 0:
		return fmt.Errorf("level %v not positive", p.Level)
	case num.Log2(p.Base)*p.Level > 64:
		return fmt.Errorf("base * level %v larger than 64 bits", num.Log2(p.Base)*p.Level)
	}
	return nil
}

// Compile transforms GadgetParametersLiteral to read-only GadgetParameters.
// If there is any invalid parameter in the literal, it panics.
func (p GadgetParametersLiteral) Compile() GadgetParameters {
	if err := p.Validate(); err != nil {
		panic(err)
	}

	return GadgetParameters{
		base:    p.Base,
		baseLog: num.Log2(p.Base),
		level:   p.Level,
	}
}

// GadgetParameters is a read-only parameter for gadget decomposition.
type GadgetParameters struct {
	base    uint64
	baseLog int
	level   int
}

// Base is a base of gadget.
func (p GadgetParameters) Base() uint64 {
	return p.base
}

// BaseLog equals log(Base).
func (p GadgetParameters) BaseLog() int {
	return p.baseLog
}

// Level is a length of gadget.
func (p GadgetParameters) Level() int {
	return p.level
}

// BaseQ returns the gadget value Q / Base^(i+1).
func (p GadgetParameters) BaseQ(i int) uint64 {
	return 1 << (64 - (i+1)*p.baseLog)
}

// BaseQLog returns log(Q / Base^(i+1)).
func (p GadgetParameters) BaseQLog(i int) int {
	return 64 - (i+1)*p.baseLog
}

// Literal returns a GadgetParametersLiteral from this GadgetParameters.
func (p GadgetParameters) Literal() GadgetParametersLiteral {
	return GadgetParametersLiteral{
		Base:  p.base,
		Level: p.level,
	}
}

// ParametersLiteral is a structure for TFHE parameters.
//
// Use Compile to get a read-only Parameters.
type ParametersLiteral struct {
	// LWEDimension is the dimension of the standalone LWE key,
	// the target of key switching.
	LWEDimension int
	// GLWERank is the rank k of GLWE ciphertexts.
	GLWERank int
	// PolyDegree is the degree N of polynomials in GLWE ciphertexts.
	PolyDegree int

	// LWEStdDev is the standard deviation of the error of LWE encryptions
	// under the standalone key, relative to the torus.
	LWEStdDev float64
	// GLWEStdDev is the standard deviation of the error of GLWE and GGSW encryptions,
	// relative to the torus.
	GLWEStdDev float64

	// GGSWParameters is the gadget used for GGSW selector encryptions.
	GGSWParameters GadgetParametersLiteral
	// PackingKeySwitchParameters is the gadget used for packing key switching.
	PackingKeySwitchParameters GadgetParametersLiteral
	// KeySwitchParameters is the gadget used for LWE key switching.
	KeySwitchParameters GadgetParametersLiteral

	// XOF selects the byte source of every sampler derived from these parameters.
	XOF csprng.XOF
}

// Validate checks if the parameters are valid.
func (p ParametersLiteral) Validate() error {
	switch {
	case p.GLWERank <= 0:
		return fmt.Errorf("GLWERank %v not positive", p.GLWERank)
	case !num.IsPowerOfTwo(p.PolyDegree):
		return fmt.Errorf("PolyDegree %v not a power of two", p.PolyDegree)
	case p.PolyDegree < poly.MinDegree || p.PolyDegree > poly.MaxDegree:
		return fmt.Errorf("PolyDegree %v not in [%v, %v]", p.PolyDegree, poly.MinDegree, poly.MaxDegree)
	case p.LWEDimension <= 0:
		return fmt.Errorf("LWEDimension %v not positive", p.LWEDimension)
	case !(p.LWEStdDev > 0 && p.LWEStdDev < 1):
		return fmt.Errorf("LWEStdDev %v not in (0, 1)", p.LWEStdDev)
	case !(p.GLWEStdDev > 0 && p.GLWEStdDev < 1):
		return fmt.Errorf("GLWEStdDev %v not in (0, 1)", p.GLWEStdDev)
	case p.XOF < csprng.XOFBlake2b || p.XOF > csprng.XOFBlake3:
		return fmt.Errorf("unknown XOF %v", p.XOF)
	}

	// terms is the number of digit products summed in one Fourier accumulator.
	// LWE key switching never leaves the coefficient domain.
	gadgets := []struct {
		name  string
		p     GadgetParametersLiteral
		terms int
	}{
		{"GGSWParameters", p.GGSWParameters, (p.GLWERank + 1) * p.GGSWParameters.Level},
		{"PackingKeySwitchParameters", p.PackingKeySwitchParameters, p.GLWERank * p.PolyDegree * p.PackingKeySwitchParameters.Level},
		{"KeySwitchParameters", p.KeySwitchParameters, 0},
	}
	var errs []error
	for _, g := range gadgets {
		if err := g.p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", g.name, err))
			continue
		}
		if g.terms == 0 {
			continue
		}
		if bits := poly.ProductBits(p.PolyDegree, g.terms, num.Log2(g.p.Base)); bits > poly.MaxProductBits {
			errs = append(errs, fmt.Errorf("%s: Fourier products need %v bits, more than %v", g.name, bits, poly.MaxProductBits))
		}
	}
	return errors.Join(errs...)
}

// Compile transforms ParametersLiteral to read-only Parameters.
// If there is any invalid parameter in the literal, it panics.
func (p ParametersLiteral) Compile() Parameters {
	if err := p.Validate(); err != nil {
		panic(err)
	}

	return Parameters{
		lweDimension:  p.LWEDimension,
		glweRank:      p.GLWERank,
		polyDegree:    p.PolyDegree,
		logPolyDegree: num.Log2(p.PolyDegree),

		lweStdDev:  p.LWEStdDev,
		glweStdDev: p.GLWEStdDev,

		ggswParameters:             p.GGSWParameters.Compile(),
		packingKeySwitchParameters: p.PackingKeySwitchParameters.Compile(),
		keySwitchParameters:        p.KeySwitchParameters.Compile(),

		xof: p.XOF,
	}
}

// Parameters are read-only, compiled parameters based on ParametersLiteral.
type Parameters struct {
	lweDimension  int
	glweRank      int
	polyDegree    int
	logPolyDegree int

	lweStdDev  float64
	glweStdDev float64

	ggswParameters             GadgetParameters
	packingKeySwitchParameters GadgetParameters
	keySwitchParameters        GadgetParameters

	xof csprng.XOF
}

// LWEDimension is the dimension of the standalone LWE key.
func (p Parameters) LWEDimension() int {
	return p.lweDimension
}

// GLWERank is the rank k of GLWE ciphertexts.
func (p Parameters) GLWERank() int {
	return p.glweRank
}

// GLWEDimension is the dimension of the LWE view of the GLWE key.
// This equals GLWERank * PolyDegree.
func (p Parameters) GLWEDimension() int {
	return p.glweRank * p.polyDegree
}

// PolyDegree is the degree N of polynomials in GLWE ciphertexts.
func (p Parameters) PolyDegree() int {
	return p.polyDegree
}

// LogPolyDegree equals log(PolyDegree).
func (p Parameters) LogPolyDegree() int {
	return p.logPolyDegree
}

// LWEStdDev is the standard deviation of LWE errors, relative to the torus.
func (p Parameters) LWEStdDev() float64 {
	return p.lweStdDev
}

// GLWEStdDev is the standard deviation of GLWE errors, relative to the torus.
func (p Parameters) GLWEStdDev() float64 {
	return p.glweStdDev
}

// GGSWParameters is the gadget parameters for GGSW encryptions.
func (p Parameters) GGSWParameters() GadgetParameters {
	return p.ggswParameters
}

// PackingKeySwitchParameters is the gadget parameters for packing key switching.
func (p Parameters) PackingKeySwitchParameters() GadgetParameters {
	return p.packingKeySwitchParameters
}

// KeySwitchParameters is the gadget parameters for LWE key switching.
func (p Parameters) KeySwitchParameters() GadgetParameters {
	return p.keySwitchParameters
}

// XOF is the byte source of samplers.
func (p Parameters) XOF() csprng.XOF {
	return p.xof
}

// Literal returns a ParametersLiteral from this Parameters.
func (p Parameters) Literal() ParametersLiteral {
	return ParametersLiteral{
		LWEDimension: p.lweDimension,
		GLWERank:     p.glweRank,
		PolyDegree:   p.polyDegree,

		LWEStdDev:  p.lweStdDev,
		GLWEStdDev: p.glweStdDev,

		GGSWParameters:             p.ggswParameters.Literal(),
		PackingKeySwitchParameters: p.packingKeySwitchParameters.Literal(),
		KeySwitchParameters:        p.keySwitchParameters.Literal(),

		XOF: p.xof,
	}
}
