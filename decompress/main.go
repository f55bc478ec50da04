package main

import (
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/fumin/lz"
)

var verbose = flag.Bool("verbose", false, "verbosity")

func main() {
	flag.Parse()
	if *verbose {
		log.Printf("decompressing stdin")
	}
	if err := lz.Decompress(os.Stdout, os.Stdin); err != nil {
		log.Fatalf("%+v", err)
	}
}
