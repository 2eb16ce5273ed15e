// Package lut implements encrypted lookup tables indexed by encrypted addresses,
// and the parallel pipelines that train and query them.
package lut

import (
	"errors"
	"fmt"

	"github.com/wisardfhe/tfhe-lut/math/num"
	"github.com/wisardfhe/tfhe-lut/tfhe"
)

// ErrAddress is returned when an address does not fit in a Layout.
var ErrAddress = errors.New("address out of range")

// MaxAddressSize is the largest supported address size in bits.
const MaxAddressSize = 32

// MaxLabels is the largest supported number of labels.
const MaxLabels = 256

// Address is one training or inference query.
type Address struct {
	// Label is the class of the sample.
	Label uint8
	// Index selects the table the address belongs to.
	Index uint16
	// Addr is the address within the table.
	Addr uint32
}

// Layout describes how an address, concatenated with its label,
// is spread over an array of polynomials of degree N.
//
// The low bits of the concatenated address select a coefficient by blind rotation,
// and the high bits select a polynomial by a tree of gates.
type Layout struct {
	// AddressSize is the number of address bits.
	AddressSize int
	// NumLabels is the number of labels.
	NumLabels int
	// LabelSize is the number of bits needed to enumerate labels.
	LabelSize int
	// AddressLabelSize is AddressSize + LabelSize.
	AddressLabelSize int

	// PolyDegree is the degree N of every polynomial.
	PolyDegree int
	// LogPolyDegree is log2(N).
	LogPolyDegree int

	// Depth is the number of high bits, selecting a polynomial.
	Depth int
	// Count is the number of polynomials of a table, 2^Depth.
	Count int

	// TrainLowSize is the number of low bits of the concatenated address.
	TrainLowSize int
	// InferLowSize is the number of low bits of the address alone.
	InferLowSize int

	// LowerLabelBits is the number of label bits stored within a polynomial.
	LowerLabelBits int
	// UpperLabelBits is the number of label bits selecting polynomials.
	UpperLabelBits int
	// UpperTableSize is the number of polynomials sharing the same upper label bits.
	UpperTableSize int
	// LowerTableSize is the number of coefficients sharing the same lower label bits.
	LowerTableSize int
}

// NewLayout returns the Layout of tables with addressSize address bits,
// numLabels labels and polynomials of degree polyDegree.
func NewLayout(addressSize, numLabels, polyDegree int) (Layout, error) {
	switch {
	case addressSize < 1 || addressSize > MaxAddressSize:
		return Layout{}, fmt.Errorf("address size %d not in [1, %d]", addressSize, MaxAddressSize)
	case numLabels < 1 || numLabels > MaxLabels:
		return Layout{}, fmt.Errorf("label count %d not in [1, %d]", numLabels, MaxLabels)
	case !num.IsPowerOfTwo(polyDegree):
		return Layout{}, fmt.Errorf("degree %d not a power of two", polyDegree)
	}

	l := Layout{
		AddressSize:   addressSize,
		NumLabels:     numLabels,
		LabelSize:     num.CeilLog2(numLabels),
		PolyDegree:    polyDegree,
		LogPolyDegree: num.Log2(polyDegree),
	}
	l.AddressLabelSize = l.AddressSize + l.LabelSize

	l.Depth = num.SaturatingSub(l.AddressLabelSize, l.LogPolyDegree)
	l.Count = 1 << l.Depth
	l.TrainLowSize = min(l.AddressLabelSize, l.LogPolyDegree)
	l.InferLowSize = min(l.AddressSize, l.LogPolyDegree)

	l.LowerLabelBits = num.SaturatingSub(l.LabelSize, l.Depth)
	l.UpperLabelBits = l.LabelSize - l.LowerLabelBits
	l.UpperTableSize = 1 << (l.Depth - l.UpperLabelBits)
	l.LowerTableSize = 1 << (l.TrainLowSize - l.LowerLabelBits)

	return l, nil
}

// CheckAddress returns an error if addr does not fit in the layout.
func (l Layout) CheckAddress(addr Address) error {
	if int(addr.Label) >= l.NumLabels {
		return fmt.Errorf("%w: label %d, %d labels", ErrAddress, addr.Label, l.NumLabels)
	}
	if uint64(addr.Addr) >= 1<<l.AddressSize {
		return fmt.Errorf("%w: address %d, %d bits", ErrAddress, addr.Addr, l.AddressSize)
	}
	return nil
}

// AddressLabel returns the label concatenated above the address.
func (l Layout) AddressLabel(label int, addr uint32) uint64 {
	return uint64(label)<<l.AddressSize | uint64(addr)
}

// Locate returns the polynomial and coefficient storing the counter of addr under label.
func (l Layout) Locate(label int, addr uint32) (poly, coeff int) {
	addrLabel := l.AddressLabel(label, addr)
	return int(addrLabel >> l.LogPolyDegree), int(addrLabel & uint64(l.PolyDegree-1))
}

// UpperOffset returns the first polynomial of the tables of label.
func (l Layout) UpperOffset(label int) int {
	return (label >> l.LowerLabelBits) * l.UpperTableSize
}

// LowerOffset returns the coefficient of the counters of label, after rotation.
func (l Layout) LowerOffset(label int) int {
	return (label & (1<<l.LowerLabelBits - 1)) * l.LowerTableSize
}

// SplitTrain splits the selectors of a concatenated address
// into the low bits for blind rotation and the high bits for the tree.
//
// Panics when len(bits) != AddressLabelSize.
func (l Layout) SplitTrain(bits []tfhe.FourierGGSWCiphertext) (low, high []tfhe.FourierGGSWCiphertext) {
	if len(bits) != l.AddressLabelSize {
		panic("selector count mismatch")
	}
	return bits[:l.TrainLowSize], bits[l.TrainLowSize:]
}

// SplitInfer splits the selectors of an address
// into the low bits for blind rotation and the high bits for the tree.
//
// Panics when len(bits) != AddressSize.
func (l Layout) SplitInfer(bits []tfhe.FourierGGSWCiphertext) (low, high []tfhe.FourierGGSWCiphertext) {
	if len(bits) != l.AddressSize {
		panic("selector count mismatch")
	}
	return bits[:l.InferLowSize], bits[l.InferLowSize:]
}

// String returns a multi-line summary of the layout.
func (l Layout) String() string {
	return fmt.Sprintf(
		"Addr. size: %d\nNr. labels: %d\nLabel size: %d\nV.P. depth: %d\nV.P. count: %d\nUpper bits: %d\nLower bits: %d\nUpper size: %d\nLower size: %d",
		l.AddressSize, l.NumLabels, l.LabelSize, l.Depth, l.Count,
		l.UpperLabelBits, l.LowerLabelBits, l.UpperTableSize, l.LowerTableSize,
	)
}
