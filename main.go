package main

import (
	"github.com/AzielCF/az-telebox/cmd"
)

func main() {
	cmd.Execute()
}
