package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/contextenginehq/context-core/core/cache"
	"github.com/contextenginehq/context-core/core/fsx"
	"github.com/contextenginehq/context-core/core/projectconfig"
	"github.com/contextenginehq/context-core/core/receipt"
	"github.com/contextenginehq/context-core/core/selection"
)

func runSelect(arguments []string) int {
	flagSet := flag.NewFlagSet("select", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var cacheDir string
	var query string
	var budgetTokens int
	var receiptPath string
	var configPath string
	var helpFlag bool

	flagSet.StringVar(&cacheDir, "cache", "", "cache directory")
	flagSet.StringVar(&query, "query", "", "query text")
	flagSet.IntVar(&budgetTokens, "budget", 0, "token budget")
	flagSet.StringVar(&receiptPath, "receipt", "", "write a selection receipt to this path")
	flagSet.StringVar(&configPath, "config", projectconfig.DefaultPath, "project config path")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeError(true, err, exitInvalidInput)
	}
	if helpFlag {
		printUsage()
		return exitOK
	}

	configuration, err := projectconfig.Load(configPath, configPath == projectconfig.DefaultPath)
	if err != nil {
		return writeError(true, err, exitInvalidInput)
	}
	if cacheDir == "" {
		cacheDir = configuration.Select.Cache
	}
	if strings.TrimSpace(cacheDir) == "" {
		return writeError(true, fmt.Errorf("--cache is required"), exitInvalidInput)
	}
	budgetSet := false
	flagSet.Visit(func(parsed *flag.Flag) {
		if parsed.Name == "budget" {
			budgetSet = true
		}
	})
	if !budgetSet {
		if configuration.Select.BudgetTokens > 0 {
			budgetTokens = configuration.Select.BudgetTokens
		} else {
			budgetTokens = 4000
		}
	}

	loaded, err := cache.Load(cacheDir)
	if err != nil {
		return writeError(true, err, exitInternalFailure)
	}
	result, err := selection.DefaultSelector().Select(loaded, selection.NewQuery(query), budgetTokens)
	if err != nil {
		return writeError(true, err, exitInternalFailure)
	}

	if receiptPath != "" {
		built, err := receipt.Build(loaded.Manifest.CacheVersion, result)
		if err != nil {
			return writeError(true, err, exitInternalFailure)
		}
		encoded, err := json.MarshalIndent(built, "", "  ")
		if err != nil {
			return writeError(true, err, exitInternalFailure)
		}
		if err := fsx.WriteFileAtomic(receiptPath, append(encoded, '\n'), 0o644); err != nil {
			return writeError(true, err, exitInternalFailure)
		}
	}

	// The selection result JSON is the public contract; print it verbatim.
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return writeError(true, err, exitInternalFailure)
	}
	fmt.Println(string(encoded))
	return exitOK
}
