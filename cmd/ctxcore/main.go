package main

import (
	"fmt"
	"os"
)

// version is stamped at release time via ldflags; default stays dev for local builds.
var version = "0.0.0-dev"

const (
	exitOK              = 0
	exitInternalFailure = 1
	exitInvalidInput    = 2
	exitVerifyFailed    = 3
)

func main() {
	os.Exit(run(os.Args))
}

func run(arguments []string) int {
	if len(arguments) < 2 {
		fmt.Println("ctxcore", version)
		return exitOK
	}
	switch arguments[1] {
	case "build":
		return runBuild(arguments[2:])
	case "select":
		return runSelect(arguments[2:])
	case "verify":
		return runVerify(arguments[2:])
	case "version", "--version", "-v":
		fmt.Println("ctxcore", version)
		return exitOK
	default:
		printUsage()
		return exitInvalidInput
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  ctxcore build --root <dir> --out <cache_dir> [--config <path>] [--json]")
	fmt.Println("  ctxcore select --cache <cache_dir> --query <text> [--budget <tokens>] [--receipt <path>] [--config <path>]")
	fmt.Println("  ctxcore verify --cache <cache_dir> [--json]")
	fmt.Println("  ctxcore version")
}
