package main

import (
	"fmt"
	"os"

	"github.com/Freeeeeet/slot_swap_bot/internal/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
