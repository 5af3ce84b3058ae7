// Copyright 2025 The wordrank Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the phrase completion server and CLI [DBG] application.

wordrank loads a static corpus of phrases with frequencies and answers
"the K most frequent completions of this prefix". When a prefix matches fewer
than K phrases it falls back to edit-distance matching over the whole corpus,
so typos still get useful suggestions. It can operate as a MessagePack IPC
server for integration with editors, or as a CLI application for testing and
debugging.

# Usage

Start the server on a corpus:

	wordrank -f words.txt

Enable debug logging and run the interactive CLI:

	wordrank -f words.txt -d -c --limit 5

Convert a text corpus to the binary format and serve it:

	wordrank -f words.txt --export words.bin

# Corpus

Text corpora hold one phrase per line with an optional frequency after a
colon. Lines without digits after the colon get frequency 1:

	ice cream:4096
	hello:2500
	zeitgeist

Files ending in .bin are read as binary dictionaries written by --export.

# Configuration

Runtime configuration lives in a TOML file that is created with defaults if
it doesn't exist:

	[server]
	max_limit = 64
	default_limit = 10
	max_prefix = 60
	enable_filter = false
	reload_every = 100

	[dict]
	path = "corpus.txt"
	max_entries = 10000000

	[fuzzy]
	width_factor = 0.2
	exact = false

Server mode reloads the file every reload_every requests.

# Command Line Flags

	    --version      Show current version
	-f, --corpus       Corpus file (default from config)
	-d, --debug        Enable debug mode with detailed logging
	-c, --cli          Run in CLI mode instead of server mode
	-l, --limit        Number of suggestions in CLI mode
	    --prmax        Maximum prefix length in CLI mode
	    --no-filter    Disable input filtering in CLI mode
	    --config       Custom config file
	    --export       Write the loaded corpus as a binary dictionary
	    --exact        Score the fuzzy fallback with exact edit distance
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bastiangx/wordrank/internal/cli"
	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/bastiangx/wordrank/pkg/server"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"
)

const (
	Version = "0.3.0"
	AppName = "wordrank"
	gh      = "https://github.com/bastiangx/wordrank"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only manages the flow between config, corpus loading and the chosen
// front end.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	corpusPath := flag.StringP("corpus", "f", "", "Corpus file, text or .bin (default from config)")
	debugMode := flag.BoolP("debug", "d", false, "Toggle debug mode")
	cliMode := flag.BoolP("cli", "c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.IntP("limit", "l", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return in CLI mode")
	maxPrefix := flag.Int("prmax", defaultConfig.CLI.DefaultMaxLen, "Maximum prefix length in CLI mode")
	noFilter := flag.Bool("no-filter", defaultConfig.CLI.DefaultNoFilter, "Disable input filtering in CLI mode")
	configFile := flag.String("config", "", "Custom config file path")
	exportPath := flag.String("export", "", "Write the loaded corpus to this path in binary format")
	exact := flag.Bool("exact", false, "Use exact edit distance for the fuzzy fallback")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(configPath))

	// Flags left at their defaults defer to the config file.
	if !flag.CommandLine.Changed("limit") {
		*limit = appConfig.CLI.DefaultLimit
	}
	if !flag.CommandLine.Changed("prmax") {
		*maxPrefix = appConfig.CLI.DefaultMaxLen
	}
	if !flag.CommandLine.Changed("no-filter") {
		*noFilter = appConfig.CLI.DefaultNoFilter
	}
	if *corpusPath == "" {
		*corpusPath = appConfig.Dict.Path
	}

	path := *corpusPath
	if resolver, err := utils.NewPathResolver(); err == nil {
		path = resolver.GetCorpusPath(path)
	} else {
		log.Warnf("Path resolver unavailable, using %s as given: %v", path, err)
	}

	opts := []suggest.Option{
		suggest.WithFuzzyWidth(appConfig.Fuzzy.WidthFactor),
		suggest.WithMaxEntries(appConfig.Dict.MaxEntries),
	}
	if *exact || appConfig.Fuzzy.Exact {
		opts = append(opts, suggest.WithExactDistance())
	}

	if format, err := dictionary.NewLoader(appConfig.Dict.MaxEntries).DetectFormat(path); err == nil {
		log.Debugf("Corpus %s looks like a %s", path, format)
	} else {
		log.Debugf("Corpus format check: %v", err)
	}

	start := time.Now()
	completer, err := suggest.LoadCompleter(path, opts...)
	if err != nil {
		log.Fatalf("Failed to load corpus %s: %v", path, err)
	}
	log.Debugf("Indexed %s phrases in %v", utils.FormatWithCommas(completer.Len()), time.Since(start))

	if *exportPath != "" {
		if err := dictionary.Save(*exportPath, completer.Records()); err != nil {
			log.Fatalf("Failed to export corpus: %v", err)
		}
		log.Infof("Exported %d phrases to %s", completer.Len(), *exportPath)
	}

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"maxPrefix", *maxPrefix,
			"limit", *limit,
			"noFilter", *noFilter)

		inputHandler := cli.NewInputHandler(completer, *maxPrefix, *limit, *noFilter, os.Stdin, os.Stdout)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(completer, appConfig, configPath)
	showStartupInfo(path, completer.Len())

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ wordrank ] ranked phrase completions")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(corpus string, phrases int) {
	info := logger.NewWithConfig(AppName, log.InfoLevel, false, false, log.TextFormatter)
	info.Infof("Version: %s", Version)
	info.Infof("Process ID: [ %d ]", os.Getpid())
	info.Infof("corpus: ( %s, %s phrases )", corpus, utils.FormatWithCommas(phrases))
	info.Info("status: ready")
}
