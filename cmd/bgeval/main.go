package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bgeval:", err)
		os.Exit(1)
	}
}
