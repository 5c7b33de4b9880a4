// Command pack builds the embeddable site content: it copies routed pages
// and their referenced static assets from web/ into build/public, writes the
// pack manifest and regenerates the embed stub.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/meridianaero/flightsite/internal/assets/packer"
)

func main() {
	configPath := flag.String("config", "config.json", "site configuration file")
	webDir := flag.String("web", "web", "source content directory")
	buildDir := flag.String("build", "build", "pack output directory")
	flag.Parse()

	if err := packer.Run(*configPath, *webDir, *buildDir); err != nil {
		fmt.Fprintf(os.Stderr, "pack: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("packed %s into %s/public\n", *webDir, *buildDir)
}
