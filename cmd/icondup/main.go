// Command icondup finds duplicate and near duplicate SVG icons.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/benoitkugler/icondup/config"
	"github.com/benoitkugler/icondup/logging"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "compare":
		runCompare()
	case "render":
		runRender()
	case "server":
		runServer()
	case "version", "--version", "-v":
		fmt.Printf("icondup version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`icondup finds duplicate and near duplicate SVG icons.

Usage:
  icondup compare [flags] <reference.svg | ->   compare an icon against the library
  icondup render [flags] <a.svg> [b.svg]       rasterize one icon, or two side by side
  icondup server [flags]                       serve the HTTP API
  icondup version                              print the version
  icondup help                                 print this help

Run 'icondup <command> -h' for the flags of a command.
`)
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// loadConfig loads the config at path, falling back to the defaults
// when the default file does not exist.
func loadConfig(path string) *config.Config {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func newLogger(debug bool) *zap.Logger {
	logger, err := logging.New(debug)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	return logger
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
