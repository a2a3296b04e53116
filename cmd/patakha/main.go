// Command patakha compiles Patakha (.bhai) source files.
package main

import (
	"fmt"
	"os"

	"github.com/patakha-lang/patakha/cmd/patakha/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
