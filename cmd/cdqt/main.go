package main

import (
	"os"

	"github.com/blackwell-systems/cdqt/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
