package vector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// MarshalJSON encodes the vector as a JSON number array.
// A zero-dimension vector encodes as [] rather than null.
func (v Vector) MarshalJSON() ([]byte, error) {
	if v.data == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.data)
}

// UnmarshalJSON decodes a JSON number array.
func (v *Vector) UnmarshalJSON(b []byte) error {
	var data []float32
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("vector: decode json: %w", err)
	}
	if data == nil {
		data = []float32{}
	}
	v.data = data
	return nil
}

// MarshalBinary encodes the vector as a little-endian uint32 dimension
// followed by the IEEE 754 float32 components.
func (v Vector) MarshalBinary() ([]byte, error) {
	b := make([]byte, 4+4*len(v.data))
	binary.LittleEndian.PutUint32(b, uint32(len(v.data)))
	for i, x := range v.data {
		binary.LittleEndian.PutUint32(b[4+4*i:], math.Float32bits(x))
	}
	return b, nil
}

// UnmarshalBinary decodes the format produced by MarshalBinary.
func (v *Vector) UnmarshalBinary(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("vector: invalid binary encoding: %d bytes is too short", len(b))
	}
	dim := binary.LittleEndian.Uint32(b)
	if want := 4 + 4*uint64(dim); uint64(len(b)) != want {
		return fmt.Errorf("vector: invalid binary encoding: dimension %d needs %d bytes, got %d", dim, want, len(b))
	}
	data := make([]float32, dim)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4+4*i:]))
	}
	v.data = data
	return nil
}
