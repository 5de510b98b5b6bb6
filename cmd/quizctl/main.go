// Command quizctl validates question catalogs, prints the topic graph and
// exports user results.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
