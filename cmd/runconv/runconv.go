package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/thijzert/go-rcfile"
)

var Config = struct {
	Source      string
	Destination string
	Strict      bool
	Quiet       bool
}{}

func init() {
	flag.StringVar(&Config.Source, "source", "workspace.xml", "Input workspace.xml, or a directory or zip archive containing run configurations")
	flag.StringVar(&Config.Destination, "destination", "launch.json", "Output launch.json, or the directory to write it in")

	flag.BoolVar(&Config.Strict, "strict", false, "Don't write anything if any input file is malformed")
	flag.BoolVar(&Config.Quiet, "quiet", false, "Only report errors")

	flag.Usage = usage

	// Parse config file first, and override with anything on the commandline
	rcfile.Parse()
	flag.Parse()

	// Positional arguments trump flags
	args := flag.Args()
	if len(args) > 2 {
		usage()
		os.Exit(2)
	}
	if len(args) > 0 {
		Config.Source = args[0]
	}
	if len(args) > 1 {
		Config.Destination = args[1]
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] [SOURCE [DESTINATION]]\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	log.SetFlags(0)

	dest, err := convert(Config.Source, Config.Destination)
	croak(err)

	if !Config.Quiet {
		fmt.Printf("> OK written to %s\n", dest)
		fmt.Printf("> Copy %s to your VSCode project / workspace and have fun!\n", filepath.Base(dest))
	}
}

func croak(e error) {
	if e != nil {
		log.Fatal(e)
	}
}
