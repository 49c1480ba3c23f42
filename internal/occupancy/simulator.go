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

package occupancy

import (
	"math/rand/v2"
)

// Simulator draws random occupancy for demos and soak tests.
type Simulator struct {
	rng         *rand.Rand
	probability float64
}

// NewSimulator returns a simulator that reports occupied with the given
// probability. A nil src seeds from the runtime.
func NewSimulator(probability float64, src rand.Source) *Simulator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Simulator{rng: rand.New(src), probability: probability}
}

func (s *Simulator) Next() bool {
	return s.rng.Float64() < s.probability
}
