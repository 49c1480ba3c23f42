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

package config

import (
	"climactl/internal/climate"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules is the rule profile file: a named preset, overrides on top of
// it and the default occupant preferences.
type Rules struct {
	Profile     string              `yaml:"profile"`
	Thresholds  climate.Thresholds  `yaml:"thresholds"`
	Preferences climate.Preferences `yaml:"preferences"`
}

func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules starts from the named preset (or the default one) and the
// recommended preferences, then applies whatever the document sets.
func ParseRules(data []byte) (Rules, error) {
	var head struct {
		Profile string `yaml:"profile"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	if head.Profile == "" {
		head.Profile = climate.DefaultProfile
	}

	th, err := climate.Profile(head.Profile)
	if err != nil {
		return Rules{}, err
	}
	r := Rules{
		Profile:     head.Profile,
		Thresholds:  th,
		Preferences: climate.RecommendedPreferences(),
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	r.Profile = head.Profile

	if err := r.Thresholds.Validate(); err != nil {
		return Rules{}, err
	}
	if err := r.Preferences.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}
