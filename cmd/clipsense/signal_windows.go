//go:build windows

package main

import (
	"os"
)

// terminationSignals lists the signals that cancel an in-flight enhancement.
// Windows primarily uses os.Interrupt (Ctrl+C).
var terminationSignals = []os.Signal{os.Interrupt}
