// ABOUTME: Entry point for the blog CLI
// ABOUTME: Command-line and terminal client for the blog platform API

package main

import (
	"fmt"
	"os"

	"github.com/GasyCoder/blog-web-nextjs/cmd"
	"github.com/GasyCoder/blog-web-nextjs/internal/logger"
)

func main() {
	logger.Init()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
