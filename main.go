package main

import (
	_ "go.uber.org/automaxprocs"

	"linkshort/internal/cli"
)

func main() {
	cli.Execute()
}
