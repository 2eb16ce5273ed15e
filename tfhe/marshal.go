package tfhe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wisardfhe/tfhe-lut/math/csprng"
	"github.com/wisardfhe/tfhe-lut/math/num"
	"github.com/wisardfhe/tfhe-lut/math/poly"
)

// ErrMalformed is returned when a serialized object cannot be decoded.
var ErrMalformed = errors.New("malformed data")

// maxDimension bounds the dimensions accepted while decoding.
const maxDimension = 1 << 24

// Headers are big endian, payloads are little endian.

type encoder struct {
	buf []byte
}

func newEncoder(size int) *encoder {
	return &encoder{buf: make([]byte, 0, size)}
}

func (e *encoder) u8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *encoder) u32(v int) {
	e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(v))
}

func (e *encoder) u64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

func (e *encoder) words(v []uint64) {
	for _, x := range v {
		e.buf = binary.LittleEndian.AppendUint64(e.buf, x)
	}
}

func (e *encoder) complexes(v []complex128) {
	for _, x := range v {
		e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(real(x)))
		e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(imag(x)))
	}
}

func (e *encoder) writeTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.buf)
	return int64(n), err
}

// decoder reads from r, and keeps the first error it meets.
type decoder struct {
	r   io.Reader
	n   int64
	err error
	buf [16]byte
}

func newDecoder(r io.Reader) *decoder {
	return &decoder{r: r}
}

func (d *decoder) read(p []byte) bool {
	if d.err != nil {
		return false
	}
	n, err := io.ReadFull(d.r, p)
	d.n += int64(n)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		d.err = fmt.Errorf("%w: truncated", ErrMalformed)
	case err != nil:
		d.err = err
	}
	return d.err == nil
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
	}
}

func (d *decoder) u8() uint8 {
	if !d.read(d.buf[:1]) {
		return 0
	}
	return d.buf[0]
}

func (d *decoder) u32() int {
	if !d.read(d.buf[:4]) {
		return 0
	}
	return int(binary.BigEndian.Uint32(d.buf[:4]))
}

func (d *decoder) u64() uint64 {
	if !d.read(d.buf[:8]) {
		return 0
	}
	return binary.BigEndian.Uint64(d.buf[:8])
}

// dimension reads a dimension in [lo, maxDimension].
func (d *decoder) dimension(name string, lo int) int {
	v := d.u32()
	if d.err == nil && (v < lo || v > maxDimension) {
		d.fail("%s %d out of range", name, v)
	}
	return v
}

// degree reads a polynomial degree.
func (d *decoder) degree() int {
	v := d.u32()
	if d.err == nil && (!num.IsPowerOfTwo(v) || v < poly.MinDegree || v > poly.MaxDegree) {
		d.fail("invalid degree %d", v)
	}
	return v
}

// gadget reads gadget parameters.
func (d *decoder) gadget() GadgetParameters {
	p := GadgetParametersLiteral{Base: d.u64(), Level: d.u32()}
	if d.err != nil {
		return GadgetParameters{}
	}
	if err := p.Validate(); err != nil {
		d.fail("%v", err)
		return GadgetParameters{}
	}
	return p.Compile()
}

func (d *decoder) words(v []uint64) {
	for i := range v {
		if !d.read(d.buf[:8]) {
			return
		}
		v[i] = binary.LittleEndian.Uint64(d.buf[:8])
	}
}

func (d *decoder) complexes(v []complex128) {
	for i := range v {
		if !d.read(d.buf[:16]) {
			return
		}
		re := math.Float64frombits(binary.LittleEndian.Uint64(d.buf[:8]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(d.buf[8:16]))
		v[i] = complex(re, im)
	}
}

func (e *encoder) gadget(p GadgetParameters) {
	e.u64(p.base)
	e.u32(p.level)
}

func (e *encoder) glwe(ct GLWECiphertext) {
	for _, p := range ct.Value {
		e.words(p.Coeffs)
	}
}

func (d *decoder) glwe(ct GLWECiphertext) {
	for _, p := range ct.Value {
		d.words(p.Coeffs)
	}
}

func marshal(w interface {
	WriteTo(io.Writer) (int64, error)
}) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ByteSize returns the size of the literal in bytes.
func (p ParametersLiteral) ByteSize() int {
	return 3*4 + 2*8 + 3*(8+4) + 1
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is as follows:
//
//	[4] LWEDimension
//	[4] GLWERank
//	[4] PolyDegree
//	[8] LWEStdDev
//	[8] GLWEStdDev
//	[8] GGSWParameters.Base
//	[4] GGSWParameters.Level
//	[8] PackingKeySwitchParameters.Base
//	[4] PackingKeySwitchParameters.Level
//	[8] KeySwitchParameters.Base
//	[4] KeySwitchParameters.Level
//	[1] XOF
func (p ParametersLiteral) WriteTo(w io.Writer) (int64, error) {
	e := newEncoder(p.ByteSize())
	e.u32(p.LWEDimension)
	e.u32(p.GLWERank)
	e.u32(p.PolyDegree)
	e.u64(math.Float64bits(p.LWEStdDev))
	e.u64(math.Float64bits(p.GLWEStdDev))
	for _, g := range []GadgetParametersLiteral{p.GGSWParameters, p.PackingKeySwitchParameters, p.KeySwitchParameters} {
		e.u64(g.Base)
		e.u32(g.Level)
	}
	e.u8(uint8(p.XOF))
	return e.writeTo(w)
}

// ReadFrom implements the io.ReaderFrom interface.
// The decoded literal is validated.
func (p *ParametersLiteral) ReadFrom(r io.Reader) (int64, error) {
	d := newDecoder(r)
	var q ParametersLiteral
	q.LWEDimension = d.u32()
	q.GLWERank = d.u32()
	q.PolyDegree = d.u32()
	q.LWEStdDev = math.Float64frombits(d.u64())
	q.GLWEStdDev = math.Float64frombits(d.u64())
	for _, g := range []*GadgetParametersLiteral{&q.GGSWParameters, &q.PackingKeySwitchParameters, &q.KeySwitchParameters} {
		g.Base = d.u64()
		g.Level = d.u32()
	}
	q.XOF = csprng.XOF(d.u8())
	if d.err != nil {
		return d.n, d.err
	}
	if err := q.Validate(); err != nil {
		return d.n, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	*p = q
	return d.n, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (p ParametersLiteral) MarshalBinary() ([]byte, error) {
	return marshal(p)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (p *ParametersLiteral) UnmarshalBinary(data []byte) error {
	_, err := p.ReadFrom(bytes.NewReader(data))
	return err
}

// ByteSize returns the size of the ciphertext in bytes.
func (ct LWECiphertext) ByteSize() int {
	return 4 + len(ct.Value)*8
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is as follows:
//
//	[4] Dimension
//	[8 * (Dimension + 1)] Value
func (ct LWECiphertext) WriteTo(w io.Writer) (int64, error) {
	e := newEncoder(ct.ByteSize())
	e.u32(ct.Dimension())
	e.words(ct.Value)
	return e.writeTo(w)
}

// ReadFrom implements the io.ReaderFrom interface.
func (ct *LWECiphertext) ReadFrom(r io.Reader) (int64, error) {
	d := newDecoder(r)
	dim := d.dimension("dimension", 0)
	if d.err != nil {
		return d.n, d.err
	}
	v := NewLWECiphertextCustom(dim)
	d.words(v.Value)
	if d.err != nil {
		return d.n, d.err
	}
	*ct = v
	return d.n, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (ct LWECiphertext) MarshalBinary() ([]byte, error) {
	return marshal(ct)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (ct *LWECiphertext) UnmarshalBinary(data []byte) error {
	_, err := ct.ReadFrom(bytes.NewReader(data))
	return err
}

// ByteSize returns the size of the ciphertext in bytes.
func (ct GLWECiphertext) ByteSize() int {
	return 2*4 + len(ct.Value)*ct.Degree()*8
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is as follows:
//
//	[4] Rank
//	[4] PolyDegree
//	[8 * (Rank + 1) * PolyDegree] Value
func (ct GLWECiphertext) WriteTo(w io.Writer) (int64, error) {
	e := newEncoder(ct.ByteSize())
	e.u32(ct.Rank())
	e.u32(ct.Degree())
	e.glwe(ct)
	return e.writeTo(w)
}

// ReadFrom implements the io.ReaderFrom interface.
func (ct *GLWECiphertext) ReadFrom(r io.Reader) (int64, error) {
	d := newDecoder(r)
	rank := d.dimension("rank", 1)
	N := d.degree()
	if d.err != nil {
		return d.n, d.err
	}
	v := NewGLWECiphertextCustom(rank, N)
	d.glwe(v)
	if d.err != nil {
		return d.n, d.err
	}
	*ct = v
	return d.n, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (ct GLWECiphertext) MarshalBinary() ([]byte, error) {
	return marshal(ct)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (ct *GLWECiphertext) UnmarshalBinary(data []byte) error {
	_, err := ct.ReadFrom(bytes.NewReader(data))
	return err
}

// ByteSize returns the size of the ciphertext in bytes.
func (ct GGSWCiphertext) ByteSize() int {
	rank := len(ct.Value) - 1
	N := ct.Value[0].Value[0].Degree()
	return 3*4 + 8 + (rank+1)*ct.GadgetParameters.level*(rank+1)*N*8
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is as follows:
//
//	[4] Rank
//	[4] PolyDegree
//	[8] Base
//	[4] Level
//	[8 * (Rank + 1) * Level * (Rank + 1) * PolyDegree] Value
func (ct GGSWCiphertext) WriteTo(w io.Writer) (int64, error) {
	e := newEncoder(ct.ByteSize())
	e.u32(len(ct.Value) - 1)
	e.u32(ct.Value[0].Value[0].Degree())
	e.gadget(ct.GadgetParameters)
	for _, glev := range ct.Value {
		for _, glwe := range glev.Value {
			e.glwe(glwe)
		}
	}
	return e.writeTo(w)
}

// ReadFrom implements the io.ReaderFrom interface.
func (ct *GGSWCiphertext) ReadFrom(r io.Reader) (int64, error) {
	d := newDecoder(r)
	rank := d.dimension("rank", 1)
	N := d.degree()
	gadgetParams := d.gadget()
	if d.err != nil {
		return d.n, d.err
	}

	v := GGSWCiphertext{GadgetParameters: gadgetParams, Value: make([]GLevCiphertext, rank+1)}
	for i := range v.Value {
		v.Value[i] = GLevCiphertext{GadgetParameters: gadgetParams, Value: make([]GLWECiphertext, gadgetParams.level)}
		for j := range v.Value[i].Value {
			v.Value[i].Value[j] = NewGLWECiphertextCustom(rank, N)
			d.glwe(v.Value[i].Value[j])
		}
	}
	if d.err != nil {
		return d.n, d.err
	}
	*ct = v
	return d.n, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (ct GGSWCiphertext) MarshalBinary() ([]byte, error) {
	return marshal(ct)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (ct *GGSWCiphertext) UnmarshalBinary(data []byte) error {
	_, err := ct.ReadFrom(bytes.NewReader(data))
	return err
}

// ByteSize returns the size of the ciphertext in bytes.
func (ct FourierGGSWCiphertext) ByteSize() int {
	rank := len(ct.Value) - 1
	N := ct.Value[0].Value[0].Value[0].Degree()
	return 3*4 + 8 + (rank+1)*ct.GadgetParameters.level*(rank+1)*poly.LimbCount*(N/2)*16
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is as follows:
//
//	[4] Rank
//	[4] PolyDegree
//	[8] Base
//	[4] Level
//	[16 * (Rank + 1) * Level * (Rank + 1) * LimbCount * PolyDegree / 2] Value
func (ct FourierGGSWCiphertext) WriteTo(w io.Writer) (int64, error) {
	e := newEncoder(ct.ByteSize())
	e.u32(len(ct.Value) - 1)
	e.u32(ct.Value[0].Value[0].Value[0].Degree())
	e.gadget(ct.GadgetParameters)
	for _, glev := range ct.Value {
		for _, glwe := range glev.Value {
			for _, fp := range glwe.Value {
				for _, limb := range fp.Limbs {
					e.complexes(limb)
				}
			}
		}
	}
	return e.writeTo(w)
}

// ReadFrom implements the io.ReaderFrom interface.
func (ct *FourierGGSWCiphertext) ReadFrom(r io.Reader) (int64, error) {
	d := newDecoder(r)
	rank := d.dimension("rank", 1)
	N := d.degree()
	gadgetParams := d.gadget()
	if d.err != nil {
		return d.n, d.err
	}

	v := FourierGGSWCiphertext{GadgetParameters: gadgetParams, Value: make([]FourierGLevCiphertext, rank+1)}
	for i := range v.Value {
		v.Value[i] = FourierGLevCiphertext{GadgetParameters: gadgetParams, Value: make([]FourierGLWECiphertext, gadgetParams.level)}
		for j := range v.Value[i].Value {
			v.Value[i].Value[j] = NewFourierGLWECiphertextCustom(rank, N)
			for _, fp := range v.Value[i].Value[j].Value {
				for _, limb := range fp.Limbs {
					d.complexes(limb)
				}
			}
		}
	}
	if d.err != nil {
		return d.n, d.err
	}
	*ct = v
	return d.n, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (ct FourierGGSWCiphertext) MarshalBinary() ([]byte, error) {
	return marshal(ct)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (ct *FourierGGSWCiphertext) UnmarshalBinary(data []byte) error {
	_, err := ct.ReadFrom(bytes.NewReader(data))
	return err
}

// ByteSize returns the size of the key in bytes.
func (sk LWESecretKey) ByteSize() int {
	return 4 + len(sk.Value)*8
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is as follows:
//
//	[4] Dimension
//	[8 * Dimension] Value
func (sk LWESecretKey) WriteTo(w io.Writer) (int64, error) {
	e := newEncoder(sk.ByteSize())
	e.u32(len(sk.Value))
	e.words(sk.Value)
	return e.writeTo(w)
}

// ReadFrom implements the io.ReaderFrom interface.
func (sk *LWESecretKey) ReadFrom(r io.Reader) (int64, error) {
	d := newDecoder(r)
	dim := d.dimension("dimension", 1)
	if d.err != nil {
		return d.n, d.err
	}
	v := NewLWESecretKeyCustom(dim)
	d.words(v.Value)
	if d.err != nil {
		return d.n, d.err
	}
	*sk = v
	return d.n, nil
}

// ByteSize returns the size of the key in bytes.
func (sk GLWESecretKey) ByteSize() int {
	return 2*4 + len(sk.Value)*sk.Value[0].Degree()*8
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is as follows:
//
//	[4] Rank
//	[4] PolyDegree
//	[8 * Rank * PolyDegree] Value
func (sk GLWESecretKey) WriteTo(w io.Writer) (int64, error) {
	e := newEncoder(sk.ByteSize())
	e.u32(len(sk.Value))
	e.u32(sk.Value[0].Degree())
	for _, p := range sk.Value {
		e.words(p.Coeffs)
	}
	return e.writeTo(w)
}

// ReadFrom implements the io.ReaderFrom interface.
func (sk *GLWESecretKey) ReadFrom(r io.Reader) (int64, error) {
	d := newDecoder(r)
	rank := d.dimension("rank", 1)
	N := d.degree()
	if d.err != nil {
		return d.n, d.err
	}
	v := NewGLWESecretKeyCustom(rank, N)
	for _, p := range v.Value {
		d.words(p.Coeffs)
	}
	if d.err != nil {
		return d.n, d.err
	}
	*sk = v
	return d.n, nil
}

// ByteSize returns the size of the key in bytes.
func (sk SecretKey) ByteSize() int {
	return sk.GLWEKey.ByteSize() + sk.LWEKey.ByteSize()
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is GLWEKey followed by LWEKey.
// LWELargeKey and FourierGLWEKey are derived from GLWEKey.
func (sk SecretKey) WriteTo(w io.Writer) (int64, error) {
	n, err := sk.GLWEKey.WriteTo(w)
	if err != nil {
		return n, err
	}
	m, err := sk.LWEKey.WriteTo(w)
	return n + m, err
}

// ReadFrom implements the io.ReaderFrom interface.
func (sk *SecretKey) ReadFrom(r io.Reader) (int64, error) {
	var glweKey GLWESecretKey
	n, err := glweKey.ReadFrom(r)
	if err != nil {
		return n, err
	}
	var lweKey LWESecretKey
	m, err := lweKey.ReadFrom(r)
	if err != nil {
		return n + m, err
	}

	rank, N := len(glweKey.Value), glweKey.Value[0].Degree()
	v := SecretKey{
		LWELargeKey:    NewLWESecretKeyCustom(rank * N),
		GLWEKey:        GLWESecretKey{Value: make([]poly.Poly, rank)},
		FourierGLWEKey: FourierGLWESecretKey{Value: make([]poly.FourierSmallPoly, rank)},
		LWEKey:         lweKey,
	}
	pe := poly.NewEvaluator(N)
	for i := 0; i < rank; i++ {
		v.GLWEKey.Value[i].Coeffs = v.LWELargeKey.Value[i*N : (i+1)*N]
		copy(v.GLWEKey.Value[i].Coeffs, glweKey.Value[i].Coeffs)
		v.FourierGLWEKey.Value[i] = pe.ToFourierSmallPoly(v.GLWEKey.Value[i])
	}
	*sk = v
	return n + m, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (sk SecretKey) MarshalBinary() ([]byte, error) {
	return marshal(sk)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	_, err := sk.ReadFrom(bytes.NewReader(data))
	return err
}

// ByteSize returns the size of the key in bytes.
func (ksk KeySwitchKey) ByteSize() int {
	size := 2*4 + 8 + 4
	if len(ksk.Value) > 0 {
		size += len(ksk.Value) * ksk.GadgetParameters.level * len(ksk.Value[0].Value[0].Value) * 8
	}
	return size
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is as follows:
//
//	[4] InputDimension
//	[4] OutputDimension
//	[8] Base
//	[4] Level
//	[8 * InputDimension * Level * (OutputDimension + 1)] Value
func (ksk KeySwitchKey) WriteTo(w io.Writer) (int64, error) {
	e := newEncoder(ksk.ByteSize())
	e.u32(len(ksk.Value))
	if len(ksk.Value) > 0 {
		e.u32(ksk.Value[0].Value[0].Dimension())
	} else {
		e.u32(0)
	}
	e.u64(ksk.GadgetParameters.base)
	e.u32(ksk.GadgetParameters.level)
	for _, lev := range ksk.Value {
		for _, ct := range lev.Value {
			e.words(ct.Value)
		}
	}
	return e.writeTo(w)
}

// ReadFrom implements the io.ReaderFrom interface.
func (ksk *KeySwitchKey) ReadFrom(r io.Reader) (int64, error) {
	d := newDecoder(r)
	inDim := d.dimension("input dimension", 0)
	outDim := d.dimension("output dimension", 0)
	base, level := d.u64(), d.u32()
	if d.err != nil {
		return d.n, d.err
	}
	if inDim == 0 {
		*ksk = KeySwitchKey{}
		return d.n, nil
	}

	gadgetLit := GadgetParametersLiteral{Base: base, Level: level}
	if err := gadgetLit.Validate(); err != nil {
		return d.n, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	gadgetParams := gadgetLit.Compile()

	v := KeySwitchKey{GadgetParameters: gadgetParams, Value: make([]LevCiphertext, inDim)}
	for i := range v.Value {
		v.Value[i] = NewLevCiphertextCustom(outDim, gadgetParams)
		for _, ct := range v.Value[i].Value {
			d.words(ct.Value)
		}
	}
	if d.err != nil {
		return d.n, d.err
	}
	*ksk = v
	return d.n, nil
}

// ByteSize returns the size of the key in bytes.
func (pksk PackingKeySwitchKey) ByteSize() int {
	size := 3*4 + 8 + 4
	if len(pksk.Value) > 0 {
		ct := pksk.Value[0].Value[0]
		size += len(pksk.Value) * pksk.GadgetParameters.level * len(ct.Value) * ct.Degree() * 8
	}
	return size
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is as follows:
//
//	[4] InputDimension
//	[4] Rank
//	[4] PolyDegree
//	[8] Base
//	[4] Level
//	[8 * InputDimension * Level * (Rank + 1) * PolyDegree] Value
func (pksk PackingKeySwitchKey) WriteTo(w io.Writer) (int64, error) {
	e := newEncoder(pksk.ByteSize())
	e.u32(len(pksk.Value))
	if len(pksk.Value) > 0 {
		ct := pksk.Value[0].Value[0]
		e.u32(ct.Rank())
		e.u32(ct.Degree())
	} else {
		e.u32(0)
		e.u32(0)
	}
	e.u64(pksk.GadgetParameters.base)
	e.u32(pksk.GadgetParameters.level)
	for _, glev := range pksk.Value {
		for _, ct := range glev.Value {
			e.glwe(ct)
		}
	}
	return e.writeTo(w)
}

// ReadFrom implements the io.ReaderFrom interface.
func (pksk *PackingKeySwitchKey) ReadFrom(r io.Reader) (int64, error) {
	d := newDecoder(r)
	inDim := d.dimension("input dimension", 0)
	rank := d.dimension("rank", 0)
	N := d.u32()
	base, level := d.u64(), d.u32()
	if d.err != nil {
		return d.n, d.err
	}
	if inDim == 0 {
		*pksk = PackingKeySwitchKey{}
		return d.n, nil
	}
	if rank == 0 || !num.IsPowerOfTwo(N) || N < poly.MinDegree || N > poly.MaxDegree {
		return d.n, fmt.Errorf("%w: invalid shape rank=%d degree=%d", ErrMalformed, rank, N)
	}

	gadgetLit := GadgetParametersLiteral{Base: base, Level: level}
	if err := gadgetLit.Validate(); err != nil {
		return d.n, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	gadgetParams := gadgetLit.Compile()

	v := PackingKeySwitchKey{GadgetParameters: gadgetParams, Value: make([]GLevCiphertext, inDim)}
	for i := range v.Value {
		v.Value[i] = GLevCiphertext{GadgetParameters: gadgetParams, Value: make([]GLWECiphertext, level)}
		for j := range v.Value[i].Value {
			v.Value[i].Value[j] = NewGLWECiphertextCustom(rank, N)
			d.glwe(v.Value[i].Value[j])
		}
	}
	if d.err != nil {
		return d.n, d.err
	}
	*pksk = v
	return d.n, nil
}

// ByteSize returns the size of the key in bytes.
func (evk EvaluationKey) ByteSize() int {
	return evk.KeySwitchKey.ByteSize() + evk.PackingKeySwitchKey.ByteSize()
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is KeySwitchKey followed by PackingKeySwitchKey.
func (evk EvaluationKey) WriteTo(w io.Writer) (int64, error) {
	n, err := evk.KeySwitchKey.WriteTo(w)
	if err != nil {
		return n, err
	}
	m, err := evk.PackingKeySwitchKey.WriteTo(w)
	return n + m, err
}

// ReadFrom implements the io.ReaderFrom interface.
func (evk *EvaluationKey) ReadFrom(r io.Reader) (int64, error) {
	var v EvaluationKey
	n, err := v.KeySwitchKey.ReadFrom(r)
	if err != nil {
		return n, err
	}
	m, err := v.PackingKeySwitchKey.ReadFrom(r)
	if err != nil {
		return n + m, err
	}
	*evk = v
	return n + m, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (evk EvaluationKey) MarshalBinary() ([]byte, error) {
	return marshal(evk)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (evk *EvaluationKey) UnmarshalBinary(data []byte) error {
	_, err := evk.ReadFrom(bytes.NewReader(data))
	return err
}
