package main

import (
	"fmt"
	"os"

	"github.com/linemine/linemine/cmd"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println("linemine", version)
		return
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
