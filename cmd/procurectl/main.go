package main

import (
	"os"

	"github.com/gardenzilla/procurement/internal/ctl"
)

// The entry point for procurectl.
//
// Exits with the status of the failing step, or 1 for other errors.
func main() {
	os.Exit(ctl.Execute())
}
