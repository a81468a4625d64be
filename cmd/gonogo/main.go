// Command gonogo serves the go/no-go experiment and pays its workers.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
