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
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	holding map[uint16][]byte
	input   map[uint16][]byte
	err     error
}

func (f *fakeReader) ReadHoldingRegisters(_ context.Context, addr, _ uint16) ([]byte, error) {
	return f.holding[addr], f.err
}

func (f *fakeReader) ReadInputRegisters(_ context.Context, addr, _ uint16) ([]byte, error) {
	return f.input[addr], f.err
}

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func f32(v float32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
	return b
}

const sensorYAML = `
modbus:
  host: 192.168.1.50
  slave_id: 3
registers:
  outdoor_temp:
    address: 1
    type: input
    data_type: int16
    scale: 0.1
  outdoor_humidity:
    address: 2
    data_type: uint16
  aqi:
    address: 10
    data_type: float32
  alarm:
    address: 20
    data_type: bool
`

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(sensorYAML))
	require.NoError(t, err)
	assert.Equal(t, 502, cfg.Modbus.Port)
	assert.Equal(t, 5, cfg.Modbus.Timeout)
	assert.EqualValues(t, 3, cfg.Modbus.SlaveID)
	assert.Len(t, cfg.Registers, 4)

	_, err = ParseConfig([]byte("registers:\n  x:\n    data_type: int64\n"))
	assert.Error(t, err)
	_, err = ParseConfig([]byte("registers:\n  x:\n    data_type: int16\n    type: coil\n"))
	assert.Error(t, err)
}

func TestReadFloat(t *testing.T) {
	cfg, err := ParseConfig([]byte(sensorYAML))
	require.NoError(t, err)

	neg := int16(-125)
	reader := &fakeReader{
		input:   map[uint16][]byte{1: u16(uint16(neg))},
		holding: map[uint16][]byte{2: u16(48), 10: f32(77), 20: u16(1)},
	}
	regs := NewRegisters(reader, cfg.Registers)
	ctx := context.Background()

	v, err := regs.ReadFloat(ctx, "outdoor_temp")
	require.NoError(t, err)
	assert.InDelta(t, -12.5, v, 1e-9)

	v, err = regs.ReadFloat(ctx, "outdoor_humidity")
	require.NoError(t, err)
	assert.Equal(t, 48.0, v)

	v, err = regs.ReadFloat(ctx, "aqi")
	require.NoError(t, err)
	assert.Equal(t, 77.0, v)

	v, err = regs.ReadFloat(ctx, "alarm")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	assert.True(t, regs.Has("aqi"))
	assert.False(t, regs.Has("pressure"))
	_, err = regs.ReadFloat(ctx, "pressure")
	assert.Error(t, err)
}

func TestReadFloatErrors(t *testing.T) {
	defs := map[string]RegisterDef{"t": {Address: 1, DataType: "float32"}}

	_, err := NewRegisters(&fakeReader{holding: map[uint16][]byte{1: u16(1)}}, defs).ReadFloat(context.Background(), "t")
	assert.ErrorContains(t, err, "insufficient data")

	boom := errors.New("boom")
	_, err = NewRegisters(&fakeReader{err: boom}, defs).ReadFloat(context.Background(), "t")
	assert.ErrorIs(t, err, boom)
}

func TestIsConnError(t *testing.T) {
	assert.False(t, isConnError(nil))
	assert.True(t, isConnError(errors.New("read tcp: connection reset by peer")))
	assert.False(t, isConnError(errors.New("modbus: exception '2' (illegal data address)")))
}
