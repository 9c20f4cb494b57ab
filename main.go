package main

import (
	"os"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
