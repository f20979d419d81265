package main

import (
	"fmt"
	"os"
)

func debugLog(format string, a ...any) {
	if Debug {
		fmt.Fprintf(os.Stderr, "[confluence2md] %s", fmt.Sprintf(format, a...))
	}
}
