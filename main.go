package main

import (
	"os"

	"github.com/scan-io-git/hposcan/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
