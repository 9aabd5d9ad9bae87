package main

import (
	"fmt"
	"os"

	"github.com/kobzarvs/qpad/internal/logger"
)

func main() {
	err := newRootCmd().Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "qpad:", err)
		os.Exit(1)
	}
}
