package wisard

import (
	"fmt"
	"math"

	"github.com/wisardfhe/tfhe-lut/lut"
	"github.com/wisardfhe/tfhe-lut/math/num"
)

// NumLuts returns the number of lookup tables covering inputSize bits with addresses of addressSize bits.
func NumLuts(inputSize, addressSize int) int {
	return num.DivRoundUp(inputSize, addressSize)
}

// GenAddresses splits bits into groups of addressSize bits,
// and returns the address of each group under label.
// The first bit of a group is the least significant bit of its address.
// The last group is padded with zeros.
func GenAddresses(bits []bool, addressSize int, label uint8) ([]lut.Address, error) {
	if addressSize < 1 || addressSize > lut.MaxAddressSize {
		return nil, fmt.Errorf("address size %d not in [1, %d]", addressSize, lut.MaxAddressSize)
	}

	numLuts := NumLuts(len(bits), addressSize)
	if numLuts > math.MaxUint16+1 {
		return nil, fmt.Errorf("%d tables exceed %d", numLuts, math.MaxUint16+1)
	}

	addrs := make([]lut.Address, numLuts)
	for i := range addrs {
		addrs[i] = lut.Address{Label: label, Index: uint16(i)}
		group := bits[i*addressSize : min((i+1)*addressSize, len(bits))]
		for j, b := range group {
			if b {
				addrs[i].Addr |= 1 << j
			}
		}
	}
	return addrs, nil
}

// EncodeDataset encodes every sample and returns the concatenation of their addresses.
// It also returns the number of tables per sample.
func EncodeDataset(e *Encoder, samples []Sample, addressSize int) ([]lut.Address, int, error) {
	var addrs []lut.Address
	numLuts := 0
	for i, s := range samples {
		sAddrs, err := GenAddresses(e.Encode(s.Values), addressSize, s.Label)
		if err != nil {
			return nil, 0, fmt.Errorf("sample %d: %w", i, err)
		}
		if i == 0 {
			numLuts = len(sAddrs)
		} else if len(sAddrs) != numLuts {
			return nil, 0, fmt.Errorf("sample %d: %d tables, expected %d", i, len(sAddrs), numLuts)
		}
		addrs = append(addrs, sAddrs...)
	}
	return addrs, numLuts, nil
}
