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

package climate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBanded(t *testing.T) {
	cases := []struct {
		temp float64
		want ComfortBand
	}{
		{-60, Cold},
		{-50, Cold},
		{14.99, Cold},
		{15, MildLow},
		{17.5, MildLow},
		{20, MildLow},
		{20.01, EnergySaving},
		{22, EnergySaving},
		{25.99, EnergySaving},
		{26, MildHigh},
		{28, MildHigh},
		{30, MildHigh},
		{30.01, Hot},
		{50, Hot},
		{75, Hot},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.temp), "temp=%v", tc.temp)
	}
}

func TestClassifyBinary(t *testing.T) {
	c := Classifier{Policy: PolicyBinary, Edges: DefaultBandEdges}
	assert.Equal(t, Winter, c.Classify(-80))
	assert.Equal(t, Winter, c.Classify(14.9))
	assert.Equal(t, Summer, c.Classify(15))
	assert.Equal(t, Summer, c.Classify(40))
}

func TestClassifyPartition(t *testing.T) {
	// every temperature lands in exactly one band and the bands appear
	// in order as the temperature rises
	order := map[ComfortBand]int{Cold: 0, MildLow: 1, EnergySaving: 2, MildHigh: 3, Hot: 4}
	prev := -1
	for temp := -60.0; temp <= 60.0; temp += 0.25 {
		band := Classify(temp)
		idx, ok := order[band]
		if !assert.True(t, ok, "unexpected band %q at %v", band, temp) {
			return
		}
		assert.GreaterOrEqual(t, idx, prev, "band went backwards at %v", temp)
		prev = idx
	}
	assert.Equal(t, 4, prev)
}

func TestClassifyNaN(t *testing.T) {
	assert.Equal(t, Hot, Classify(math.NaN()))
	c := Classifier{Policy: PolicyBinary, Edges: DefaultBandEdges}
	assert.Equal(t, Summer, c.Classify(math.NaN()))
}

func TestBandSeason(t *testing.T) {
	assert.Equal(t, SeasonWinter, Cold.Season())
	assert.Equal(t, SeasonWinter, Winter.Season())
	for _, b := range []ComfortBand{MildLow, EnergySaving, MildHigh, Hot, Summer} {
		assert.Equal(t, SeasonSummer, b.Season(), "band %s", b)
	}
}
