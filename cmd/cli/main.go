// Command news-summarizer produces a topic news report from the terminal.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
