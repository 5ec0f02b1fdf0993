// Command boxlayout lays out an HTML fixture and dumps the resulting
// render tree, as text, JSON or an outline PNG.
package main

import (
	"fmt"
	"os"

	"github.com/benoitkugler/boxlayout/logger"
)

func main() {
	err := newRootCmd().Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
