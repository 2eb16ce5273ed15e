package cli

import (
	"context"
	"encoding"
	"encoding/json"
	"fmt"

	"github.com/wisardfhe/tfhe-lut/lut"
	"github.com/wisardfhe/tfhe-lut/store"
	"github.com/wisardfhe/tfhe-lut/tfhe"
)

// Model is a trained encrypted WiSARD model with the keys needed to query it.
type Model struct {
	Parameters    tfhe.ParametersLiteral
	SecretKey     tfhe.SecretKey
	EvaluationKey tfhe.EvaluationKey
	Table         lut.Table

	AddressSize int
	NumLabels   int
	NumLuts     int
	CountBits   int
}

// manifest is the JSON blob referencing the parts of a Model.
type manifest struct {
	Parameters    string `json:"parameters"`
	SecretKey     string `json:"secret_key"`
	EvaluationKey string `json:"evaluation_key"`
	Table         string `json:"table"`

	AddressSize int `json:"address_size"`
	NumLabels   int `json:"num_labels"`
	NumLuts     int `json:"num_luts"`
	CountBits   int `json:"count_bits"`
}

func put(ctx context.Context, s store.Store, v encoding.BinaryMarshaler) (string, error) {
	data, err := v.MarshalBinary()
	if err != nil {
		return "", err
	}
	h, err := s.Put(ctx, data)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

func get(ctx context.Context, s store.Store, handle string, v encoding.BinaryUnmarshaler) error {
	h, err := store.ParseHandle(handle)
	if err != nil {
		return err
	}
	data, err := s.Get(ctx, h)
	if err != nil {
		return err
	}
	if err := store.Verify(h, data); err != nil {
		return err
	}
	return v.UnmarshalBinary(data)
}

// SaveModel stores every part of m and returns the handle of its manifest.
func SaveModel(ctx context.Context, s store.Store, m *Model) (store.Handle, error) {
	man := manifest{
		AddressSize: m.AddressSize,
		NumLabels:   m.NumLabels,
		NumLuts:     m.NumLuts,
		CountBits:   m.CountBits,
	}

	parts := []struct {
		name   string
		v      encoding.BinaryMarshaler
		handle *string
	}{
		{"parameters", m.Parameters, &man.Parameters},
		{"secret key", m.SecretKey, &man.SecretKey},
		{"evaluation key", m.EvaluationKey, &man.EvaluationKey},
		{"table", m.Table, &man.Table},
	}
	for _, p := range parts {
		h, err := put(ctx, s, p.v)
		if err != nil {
			return store.Handle{}, fmt.Errorf("save %s: %w", p.name, err)
		}
		*p.handle = h
	}

	data, err := json.Marshal(man)
	if err != nil {
		return store.Handle{}, fmt.Errorf("marshal manifest: %w", err)
	}
	return s.Put(ctx, data)
}

// LoadModel loads the model whose manifest has handle h.
func LoadModel(ctx context.Context, s store.Store, h store.Handle) (*Model, error) {
	data, err := s.Get(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	var man manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	m := &Model{
		AddressSize: man.AddressSize,
		NumLabels:   man.NumLabels,
		NumLuts:     man.NumLuts,
		CountBits:   man.CountBits,
	}

	parts := []struct {
		name   string
		v      encoding.BinaryUnmarshaler
		handle string
	}{
		{"parameters", &m.Parameters, man.Parameters},
		{"secret key", &m.SecretKey, man.SecretKey},
		{"evaluation key", &m.EvaluationKey, man.EvaluationKey},
		{"table", &m.Table, man.Table},
	}
	for _, p := range parts {
		if err := get(ctx, s, p.handle, p.v); err != nil {
			return nil, fmt.Errorf("load %s: %w", p.name, err)
		}
	}

	if len(m.Table.Slots) != m.NumLuts {
		return nil, fmt.Errorf("table has %d slots, manifest %d", len(m.Table.Slots), m.NumLuts)
	}
	return m, nil
}
