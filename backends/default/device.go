//go:build !nodevice

package _default

import _ "github.com/gomlx/forall/backends/device"
