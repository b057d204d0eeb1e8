// Command hijri is a terminal front end to the tabular Hijri calendar.
//
// Usage:
//
//	hijri convert 2025-03-20
//	hijri convert --to-gregorian 1447-01-01
//	hijri grid 1446 9
//	hijri year 1447
//	hijri events --year 1447
//	hijri ics 1447 -o observances.ics
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
