package main

import (
	"fmt"
	"os"

	"github.com/greg-randall/job-finder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
