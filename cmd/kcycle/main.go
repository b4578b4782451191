package main

import (
	"os"

	"github.com/pfrederiksen/kcycle-crawler/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
