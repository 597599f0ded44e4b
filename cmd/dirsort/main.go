package main

import (
	"os"

	"dirsort/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
