/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"log"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		log.SetFlags(0)
		log.Print(err)
		os.Exit(1)
	}
}
