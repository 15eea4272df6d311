package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	// Terminal state is restored by the UI's deferred Fini; this prints what it could not
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n\x1b[31mEDUVOICE CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
