// Command batbench runs the bat optimizer over the benchmark functions with
// several population sizes, records the convergence traces and charts them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
