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
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// API key variables, newest name first.
var apiKeyVars = []string{"OPENWEATHER_API_KEY", "API_KEY"}

// LoadSecrets loads envPath into the environment (variables already set
// win) and returns the weather API key. A missing file is not an error.
func LoadSecrets(envPath string) (string, error) {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("load %s: %w", envPath, err)
	}
	for _, name := range apiKeyVars {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return "", nil
}
