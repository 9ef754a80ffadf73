//go:build !windows

package main

import (
	"os"
	"syscall"
)

// terminationSignals lists the signals that cancel an in-flight enhancement.
// SIGTERM is what shells and editors send when they abort a piped command.
var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
