// Command driverurl prints the linux64 chromedriver download URL for the
// Chrome major version in $MAJOR, read from a Chrome-for-Testing manifest.
// It is run while building the container image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/use-agent/fintables/driverurl"
)

func main() {
	path := flag.String("manifest", "/tmp/latest.json", "path to the Chrome-for-Testing builds manifest")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	url, err := driverurl.Resolve(f, os.Getenv("MAJOR"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		f.Close()
		os.Exit(1)
	}

	fmt.Println(url)
}
