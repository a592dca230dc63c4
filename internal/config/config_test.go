//
// ChessLib - a chess data structure and move generation library in GO
//
// MIT License
//
// Copyright (c) 2017-2020 Rudy Alex Kohn
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupDefaults(t *testing.T) {
	// point to a non existing file - defaults must be used
	ConfFile = "./does_not_exist.toml"
	Setup()
	assert.True(t, Settings.Hash.SizeInMB > 0)
	assert.True(t, Settings.Perft.NumWorkers > 0)
	assert.NotEqual(t, "", Settings.Log.LogLvl)
}

func TestLogLevels(t *testing.T) {
	assert.Equal(t, 5, LogLevels["debug"])
	assert.Equal(t, 0, LogLevels["critical"])
	_, found := LogLevels["bogus"]
	assert.False(t, found)
}

func TestSettingsString(t *testing.T) {
	s := Settings.String()
	assert.Contains(t, s, "SizeInMB")
	assert.Contains(t, s, "NumWorkers")
}
