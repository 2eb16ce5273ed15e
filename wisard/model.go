package wisard

import (
	"fmt"

	"github.com/wisardfhe/tfhe-lut/lut"
)

// Model is a plaintext WiSARD classifier:
// one table of 2^AddressSize counters per label and per table index.
type Model struct {
	NumLabels   int
	NumLuts     int
	AddressSize int

	counters []uint32
}

// NewModel returns a model with every counter zero.
func NewModel(numLabels, numLuts, addressSize int) *Model {
	return &Model{
		NumLabels:   numLabels,
		NumLuts:     numLuts,
		AddressSize: addressSize,
		counters:    make([]uint32, (numLabels*numLuts)<<addressSize),
	}
}

func (m *Model) offset(label, index int, addr uint32) int {
	return (label*m.NumLuts+index)<<m.AddressSize | int(addr)
}

func (m *Model) check(a lut.Address) error {
	if int(a.Label) >= m.NumLabels || int(a.Index) >= m.NumLuts || uint64(a.Addr) >= 1<<m.AddressSize {
		return fmt.Errorf("%w: label %d, index %d, address %d", lut.ErrAddress, a.Label, a.Index, a.Addr)
	}
	return nil
}

// Train increments the counter of every address under its label.
func (m *Model) Train(addrs []lut.Address) error {
	for i, a := range addrs {
		if err := m.check(a); err != nil {
			return fmt.Errorf("address %d: %w", i, err)
		}
		m.counters[m.offset(int(a.Label), int(a.Index), a.Addr)]++
	}
	return nil
}

// Count returns the counter of addr in table index under label.
func (m *Model) Count(label, index int, addr uint32) uint32 {
	return m.counters[m.offset(label, index, addr)]
}

// MaxCount returns the largest counter.
func (m *Model) MaxCount() uint32 {
	var c uint32
	for _, v := range m.counters {
		c = max(c, v)
	}
	return c
}

// Read returns the counter of every address under every label,
// in the order of Scorer.Scores. The label of each address is ignored.
func (m *Model) Read(addrs []lut.Address) ([]uint64, error) {
	counters := make([]uint64, 0, len(addrs)*m.NumLabels)
	for i, a := range addrs {
		a.Label = 0
		if err := m.check(a); err != nil {
			return nil, fmt.Errorf("address %d: %w", i, err)
		}
		for l := 0; l < m.NumLabels; l++ {
			counters = append(counters, uint64(m.Count(l, int(a.Index), a.Addr)))
		}
	}
	return counters, nil
}
