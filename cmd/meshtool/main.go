// meshtool is a CLI utility for inspecting model files without a window.
package main

import (
	"fmt"
	"os"

	"github.com/Faultbox/meshview/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	level := os.Getenv("MESHTOOL_LOG")
	if level == "" {
		level = "warn"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "stats":
		err = cmdStats(args)
	case "textures", "tex":
		err = cmdTextures(args)
	case "formats":
		cmdFormats()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - model file inspection utility

Usage:
  meshtool <command> [options]

Commands:
  info <model>                       Show the scene graph as imported
  stats [-strict] <model|dir>...     Load models and report GPU resource counts
  textures <model>                   List each mesh's textures by role
  formats                            List supported file extensions

Environment:
  MESHTOOL_LOG                       Log level (debug, info, warn, error); default warn

Examples:
  meshtool info models/mars.obj
  meshtool stats models/
  meshtool textures models/backpack.gltf`)
}
