// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package _default includes the default backends, namely seq, host and (unless excluded) device.
//
// To use it simply include:
//
//	import _ "github.com/gomlx/forall/backends/default"
//
// If you add the tag `nodevice` it will not include the device backend.
//
// It also makes host the default backend when neither FORALL_BACKEND nor backends.DefaultConfig are set.
package _default

import (
	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/backends/host"
	_ "github.com/gomlx/forall/backends/seq"
)

func init() {
	if backends.DefaultConfig == "" {
		backends.DefaultConfig = host.BackendName
	}
}
