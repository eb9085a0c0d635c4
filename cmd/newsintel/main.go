package main

import (
	"fmt"
	"os"

	"github.com/ppiankov/newsintel/internal/cli"
	"go.uber.org/zap"
)

func main() {
	err := cli.Execute()
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
