// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds the defaults used by the command line. Every value can be
// overridden by the matching flag.
type Config struct {
	Recover Recover
	Log     Log
}

type Recover struct {
	OutputDir string `env:"OUTPUT_DIR" envDefault:"/tmp/recover_jpeg"`
	MinSize   string `env:"MIN_SIZE" envDefault:"500KB"`
	MaxSize   string `env:"MAX_SIZE" envDefault:"10MB"`
}

type Log struct {
	Level    string `env:"LOG_LEVEL" envDefault:"INFO"`
	Disabled bool   `env:"NO_LOG" envDefault:"false"`
}

const EnvPrefix = "JRECOVER_"

// Load reads the configuration from the environment. Variables found in the
// given dotenv files are added to the environment first, without overriding
// variables already set. Missing dotenv files are ignored.
func Load(dotenvFiles ...string) (*Config, error) {
	for _, file := range dotenvFiles {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
