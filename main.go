package main

import (
	"log"
	"os"
)

func main() {
	log.SetFlags(log.LstdFlags)
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
