// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package modbus

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

// Registers decodes named registers from a RegisterReader.
type Registers struct {
	reader RegisterReader
	defs   map[string]RegisterDef
}

func NewRegisters(reader RegisterReader, defs map[string]RegisterDef) *Registers {
	return &Registers{reader: reader, defs: defs}
}

func (r *Registers) Has(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// ReadFloat reads a register by name and returns its scaled value.
// Bool registers read as 0 or 1.
func (r *Registers) ReadFloat(ctx context.Context, name string) (float64, error) {
	def, ok := r.defs[name]
	if !ok {
		return 0, fmt.Errorf("register %q not configured", name)
	}

	n, err := registerCount(def.DataType)
	if err != nil {
		return 0, fmt.Errorf("register %q: %w", name, err)
	}

	var raw []byte
	if def.Type == "input" {
		raw, err = r.reader.ReadInputRegisters(ctx, def.Address, n)
	} else {
		raw, err = r.reader.ReadHoldingRegisters(ctx, def.Address, n)
	}
	if err != nil {
		return 0, fmt.Errorf("register read failed for %s: %w", name, err)
	}
	if len(raw) < int(n*2) {
		return 0, fmt.Errorf("register %q returned insufficient data", name)
	}

	var v float64
	switch def.DataType {
	case "float32":
		v = float64(math.Float32frombits(binary.BigEndian.Uint32(raw)))
	case "int16":
		v = float64(int16(binary.BigEndian.Uint16(raw)))
	case "uint16":
		v = float64(binary.BigEndian.Uint16(raw))
	case "bool":
		if binary.BigEndian.Uint16(raw) != 0 {
			return 1, nil
		}
		return 0, nil
	}

	if def.Scale != 0 {
		v = v*def.Scale + def.Offset
	}
	return v, nil
}

func registerCount(dataType string) (uint16, error) {
	switch dataType {
	case "uint16", "int16", "bool":
		return 1, nil
	case "float32":
		return 2, nil
	}
	return 0, fmt.Errorf("unsupported data type %q", dataType)
}
