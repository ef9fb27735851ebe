// Copyright 2026 Flint ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the public constructor for the pure-Go CPU backend.
package cpu

import (
	"github.com/flint-ml/flint/internal/backend/cpu"
)

// Backend implements tensor.Backend with pure-Go kernels.
type Backend = cpu.CPUBackend

// New creates a new CPU backend.
func New() *Backend {
	return cpu.New()
}
