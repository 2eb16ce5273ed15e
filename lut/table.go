package lut

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/wisardfhe/tfhe-lut/tfhe"
)

// maxTableSlots bounds the number of slots accepted while decoding.
const maxTableSlots = 1 << 20

// Table is an array of encrypted lookup tables.
// Slots[i][j] is the j-th polynomial of the i-th table.
type Table struct {
	Slots [][]tfhe.GLWECiphertext
}

// NewTable returns slots tables of layout.Count noiseless encryptions of zero.
func NewTable(params tfhe.Parameters, layout Layout, slots int) Table {
	t := Table{Slots: make([][]tfhe.GLWECiphertext, slots)}
	for i := range t.Slots {
		t.Slots[i] = tfhe.NewTrivialGLWEArray(params, layout.Count)
	}
	return t
}

// Count returns the number of polynomials per slot.
func (t Table) Count() int {
	if len(t.Slots) == 0 {
		return 0
	}
	return len(t.Slots[0])
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	tOut := Table{Slots: make([][]tfhe.GLWECiphertext, len(t.Slots))}
	for i, slot := range t.Slots {
		tOut.Slots[i] = make([]tfhe.GLWECiphertext, len(slot))
		for j, ct := range slot {
			tOut.Slots[i][j] = ct.Copy()
		}
	}
	return tOut
}

// AddAssign adds other to t slot by slot.
//
// Panics when t and other have different shapes.
func (t Table) AddAssign(eval *tfhe.Evaluator, other Table) {
	if len(t.Slots) != len(other.Slots) || t.Count() != other.Count() {
		panic("table shape mismatch")
	}
	for i := range t.Slots {
		for j := range t.Slots[i] {
			eval.AddGLWEAssign(t.Slots[i][j], other.Slots[i][j], t.Slots[i][j])
		}
	}
}

// WriteTo implements the io.WriterTo interface.
//
// The encoded form is as follows:
//
//	[4] Slots
//	[4] Count
//	Slots * Count GLWE ciphertexts
func (t Table) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)

	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(t.Slots)))
	binary.BigEndian.PutUint32(header[4:8], uint32(t.Count()))
	n, err := bw.Write(header[:])
	total := int64(n)
	if err != nil {
		return total, err
	}

	for _, slot := range t.Slots {
		for _, ct := range slot {
			m, err := ct.WriteTo(bw)
			total += m
			if err != nil {
				return total, err
			}
		}
	}
	return total, bw.Flush()
}

// ReadFrom implements the io.ReaderFrom interface.
func (t *Table) ReadFrom(r io.Reader) (int64, error) {
	var header [8]byte
	n, err := io.ReadFull(r, header[:])
	total := int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return total, fmt.Errorf("table header: %w", tfhe.ErrMalformed)
		}
		return total, err
	}

	slots := int(binary.BigEndian.Uint32(header[0:4]))
	count := int(binary.BigEndian.Uint32(header[4:8]))
	if slots > maxTableSlots || count > maxTableSlots {
		return total, fmt.Errorf("table shape %dx%d: %w", slots, count, tfhe.ErrMalformed)
	}

	tOut := Table{Slots: make([][]tfhe.GLWECiphertext, slots)}
	for i := range tOut.Slots {
		tOut.Slots[i] = make([]tfhe.GLWECiphertext, count)
		for j := range tOut.Slots[i] {
			m, err := tOut.Slots[i][j].ReadFrom(r)
			total += m
			if err != nil {
				return total, fmt.Errorf("table slot %d, polynomial %d: %w", i, j, err)
			}
			if i+j > 0 && !sameShape(tOut.Slots[i][j], tOut.Slots[0][0]) {
				return total, fmt.Errorf("table slot %d, polynomial %d: shape mismatch: %w", i, j, tfhe.ErrMalformed)
			}
		}
	}

	*t = tOut
	return total, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (t Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := t.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (t *Table) UnmarshalBinary(data []byte) error {
	_, err := t.ReadFrom(bytes.NewReader(data))
	return err
}

func sameShape(ct0, ct1 tfhe.GLWECiphertext) bool {
	return ct0.Rank() == ct1.Rank() && ct0.Degree() == ct1.Degree()
}
