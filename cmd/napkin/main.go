package main

import (
	"os"

	"napkin/cmd/napkin/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
