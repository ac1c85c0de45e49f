// flumels lists the data anchors of an HDF5 trajectory file: every group
// directly holding datasets, with the dataset names and shapes found there.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/robert-malhotra/go-hdf5/hdf5"
	"github.com/rs/zerolog"

	"flume/read"
)

func main() {
	kinds := flag.Bool("kinds", false, "list the distinct dataset key-sets instead of every anchor")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: flumels [flags] <file.h5>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	if err := run(flag.Arg(0), *kinds, log); err != nil {
		log.Fatal().Err(err).Msg("listing failed")
	}
}

func run(filename string, kinds bool, log zerolog.Logger) error {
	r, err := read.OpenSchema(filename, nil)
	if err != nil {
		return err
	}
	defer r.Close()

	if kinds {
		sets, err := r.Kinds()
		if err != nil {
			return err
		}
		for _, keys := range sets {
			fmt.Println(keys)
		}
		return nil
	}

	f, err := hdf5.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, anchor := range r.Anchors() {
		fmt.Println(anchor)
		g, err := f.OpenGroup(anchor)
		if err != nil {
			log.Debug().Err(err).Str("anchor", anchor).Msg("anchor vanished")
			continue
		}
		members, err := g.Members()
		if err != nil {
			return err
		}
		for _, name := range members {
			ds, err := g.OpenDataset(name)
			if err != nil {
				continue
			}
			fmt.Printf("  %-24s %v\n", name, ds.Shape())
		}
	}
	return nil
}
