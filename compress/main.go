package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/fumin/lz"
)

var (
	capacity = flag.Int("capacity", 4096, "token id space of each context dictionary")
	config   = flag.String("config", "", "optional YAML config file overriding flags")
	verbose  = flag.Bool("verbose", false, "verbosity")
)

type configFile struct {
	Capacity int `yaml:"capacity"`
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] filename\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	name := flag.Arg(0)
	if name == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(name); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(name string) error {
	if *config != "" {
		b, err := os.ReadFile(*config)
		if err != nil {
			return errors.Wrap(err, "")
		}
		var cfg configFile
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return errors.Wrap(err, "")
		}
		if cfg.Capacity != 0 {
			*capacity = cfg.Capacity
		}
	}
	if *verbose {
		log.Printf("compressing %s with capacity %d", name, *capacity)
	}
	if err := lz.Compress(os.Stdout, name, *capacity); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
