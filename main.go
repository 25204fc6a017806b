package main

import (
	"github.com/carnivalhq/carnival/cmd/carnival"
)

func main() {
	cmd.Execute()
}
