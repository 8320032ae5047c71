// Command arkterm is a terminal assistant that sends questions to a hosted
// LLM and offers to run the shell commands it suggests.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
