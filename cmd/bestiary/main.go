package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/bestiary/internal/cli"
	"github.com/vvka-141/bestiary/pkg/bestiary"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(bestiary.ExitPanic)
		}
	}()

	if os.Getenv("BESTIARY_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(bestiary.ExitCodeForError(err))
	}
}
