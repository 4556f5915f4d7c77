package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/contextenginehq/context-core/core/cache"
)

type verifyOutput struct {
	OK     bool               `json:"ok"`
	Report cache.VerifyResult `json:"report"`
	Error  string             `json:"error,omitempty"`
}

func runVerify(arguments []string) int {
	flagSet := flag.NewFlagSet("verify", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var cacheDir string
	var jsonOutput bool
	var helpFlag bool

	flagSet.StringVar(&cacheDir, "cache", "", "cache directory")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeError(jsonOutput, err, exitInvalidInput)
	}
	if helpFlag {
		printUsage()
		return exitOK
	}
	if strings.TrimSpace(cacheDir) == "" && flagSet.NArg() == 1 {
		cacheDir = flagSet.Arg(0)
	}
	if strings.TrimSpace(cacheDir) == "" {
		return writeError(jsonOutput, fmt.Errorf("--cache is required"), exitInvalidInput)
	}

	report, err := cache.Verify(cacheDir)
	if err != nil {
		return writeError(jsonOutput, err, exitInternalFailure)
	}

	output := verifyOutput{OK: report.OK(), Report: report}
	exitCode := exitOK
	if !output.OK {
		exitCode = exitVerifyFailed
	}
	if jsonOutput {
		return writeJSONOutput(output, exitCode)
	}
	if output.OK {
		fmt.Printf("verify ok: %s\n", report.Path)
		fmt.Printf("files checked: %d\n", report.FilesChecked)
		return exitCode
	}
	fmt.Printf("verify failed: %s\n", report.Path)
	if len(report.MissingFiles) > 0 {
		fmt.Printf("missing files: %s\n", strings.Join(report.MissingFiles, ", "))
	}
	if len(report.HashMismatches) > 0 {
		fmt.Printf("hash mismatches: %d\n", len(report.HashMismatches))
	}
	if len(report.IndexErrors) > 0 {
		fmt.Printf("index errors: %s\n", strings.Join(report.IndexErrors, "; "))
	}
	if len(report.OrphanFiles) > 0 {
		fmt.Printf("orphan files: %s\n", strings.Join(report.OrphanFiles, ", "))
	}
	if len(report.SchemaErrors) > 0 {
		fmt.Printf("schema errors: %s\n", strings.Join(report.SchemaErrors, "; "))
	}
	return exitCode
}
