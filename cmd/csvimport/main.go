package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/JonMunkholm/csvimport/internal/cli"
	"github.com/JonMunkholm/csvimport/internal/core"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(cli.ExitGeneralError)
		}
	}()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(cli.ExitCodeForError(err))
	}
}
