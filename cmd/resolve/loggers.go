package main

import "log"

// Loggers holds standard loggers and a verbosity flag, lifted directly
// from the teacher's cmd/dep/loggers.go.
type Loggers struct {
	Out, Err *log.Logger
	// Whether verbose logging is enabled.
	Verbose bool
}
