package main

import (
	"errors"
	"os"
	"strings"

	"github.com/flarebyte/nebula/cmd/nebula/root"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	err := root.Execute(os.Args[1:])
	if err == nil {
		return
	}
	os.Exit(report(err))
}

// report prints err as one line on stderr and returns the exit code.
func report(err error) int {
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if msg == "" {
		msg = "error"
	}
	_, _ = os.Stderr.WriteString("nebula: " + msg + "\n")
	var ec exitCoder
	if errors.As(err, &ec) && ec.ExitCode() != 0 {
		return ec.ExitCode()
	}
	return 1
}
