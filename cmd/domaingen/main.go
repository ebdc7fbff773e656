// Package main provides the entry point for the domaingen application.
//
// domaingen exhaustively generates domain-name candidates and checks their
// availability across a set of suffixes. It provides four commands:
//
//  1. generate - Enumerates every candidate for a length range and alphabet,
//     optionally requiring one of a set of words, and saves them.
//
//  2. check - Checks candidates from a file or a fresh generation against
//     the configured suffixes and prints the best available names.
//
//  3. export - Writes saved candidates as txt, csv or json.
//
//  4. serve - Runs the HTTP API for controlling generation and checks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/uberswe/domaingen/internal/app"
	"github.com/uberswe/domaingen/internal/available"
	"github.com/uberswe/domaingen/internal/httpapi"
	"github.com/uberswe/domaingen/pkg/awake"
	"github.com/uberswe/domaingen/pkg/config"
	"github.com/uberswe/domaingen/pkg/domain"
	"github.com/uberswe/domaingen/pkg/store"
)

func main() {
	// Configure zerolog with console output and microsecond precision
	zerolog.TimeFieldFormat = "2006-01-02 15:04:05.000000"

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.StampMicro,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Caller().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Remove the command from os.Args to make flag parsing work
	os.Args = append(os.Args[:1], os.Args[2:]...)

	configFile := flag.String("config", config.DefaultConfigFileName, "Path to configuration file (.json, .yaml or .yml)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "generate":
		gen := generationFlags()
		outPath := flag.String("output", "", "Write candidates to this file instead of stdout")
		flag.Parse()
		setLevel(*debug)

		a := mustApp(ctx, *configFile)
		defer a.Close()

		candidates, err := a.Generate(ctx, gen.apply(a.Config.Generation))
		if err != nil && !errors.Is(err, context.Canceled) {
			fatal(a, err, "Generation failed")
		}
		if _, err := a.Store.SaveCandidates(context.WithoutCancel(ctx), candidates); err != nil {
			log.Error().Err(err).Msg("Failed to save candidates")
		}
		if err := writeLines(*outPath, candidates); err != nil {
			fatal(a, err, "Failed to write candidates")
		}

	case "check":
		gen := generationFlags()
		input := flag.String("input", "", "File with one candidate per line; generates from config when empty")
		suffixes := flag.String("suffixes", "", "Comma separated suffixes, overrides the config (e.g. .com,.net)")
		top := flag.Int("top", 100, "Number of available domains to print")
		keepAwakeFlag := flag.Bool("keep-awake", false, "Keep computer awake by moving mouse")
		flag.Parse()
		setLevel(*debug)

		a := mustApp(ctx, *configFile)
		defer a.Close()

		if *suffixes != "" {
			a.Config.Suffixes = splitList(*suffixes)
			if err := a.Config.Validate(); err != nil {
				fatal(a, err, "Invalid suffixes")
			}
		}

		var candidates []string
		var err error
		if *input != "" {
			candidates, err = available.ReadCandidates(*input)
		} else {
			candidates, err = a.Generate(ctx, gen.apply(a.Config.Generation))
		}
		if err != nil {
			fatal(a, err, "Failed to collect candidates")
		}

		if *keepAwakeFlag {
			go awake.KeepAwake(ctx, awake.DefaultInterval)
		}

		report, err := available.Run(ctx, a, candidates, a.Config.Suffixes, *top, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			fatal(a, err, "Check failed")
		}
		log.Info().
			Str("run_id", report.RunID).
			Int("checked", report.Checked).
			Int("available", report.Available).
			Int("failed", report.Failed).
			Int("cache_hits", report.CacheHits).
			Dur("duration", report.Duration).
			Msg("Check summary")

	case "export":
		format := flag.String("format", "txt", "Export format: txt, csv or json")
		outPath := flag.String("output", "", "Write to this file instead of stdout")
		header := flag.Bool("header", false, "Add a comment header to txt exports")
		onlyAvailable := flag.Bool("available", false, "Only export candidates found available")
		flag.Parse()
		setLevel(*debug)

		f, err := store.ParseFormat(*format)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid export format")
		}

		a := mustApp(ctx, *configFile)
		defer a.Close()

		w, closeOutput, err := openOutput(*outPath)
		if err != nil {
			fatal(a, err, "Failed to open output")
		}
		err = store.ExportStore(ctx, a.Store, f, w, store.ExportOptions{Header: *header, OnlyAvailable: *onlyAvailable})
		if cerr := closeOutput(); err == nil {
			err = cerr
		}
		if err != nil {
			fatal(a, err, "Export failed")
		}

	case "serve":
		addr := flag.String("addr", "", "Listen address, overrides the config")
		flag.Parse()
		setLevel(*debug)

		a := mustApp(ctx, *configFile)
		defer a.Close()
		if *addr != "" {
			a.Config.ListenAddr = *addr
		}
		serve(ctx, a)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: domaingen <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  generate   Enumerate domain candidates")
	fmt.Println("  check      Check candidates for availability")
	fmt.Println("  export     Export saved candidates")
	fmt.Println("  serve      Run the HTTP API")
	fmt.Println("Run 'domaingen <command> -h' for command-specific help")
}

func setLevel(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// exit logs and terminates the process; replaced in tests
var exit = func(err error, msg string) {
	log.Fatal().Err(err).Msg(msg)
}

// fatal closes the app's connections before exiting, log.Fatal skips deferred calls
func fatal(a *app.App, err error, msg string) {
	if cerr := a.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("Failed to close connections")
	}
	exit(err, msg)
}

func mustApp(ctx context.Context, configFile string) *app.App {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	a, err := app.New(ctx, *cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	return a
}

// genFlags override the generation section of the config when set
type genFlags struct {
	min, max int
	alphabet string
	charset  string
	words    string
}

func generationFlags() *genFlags {
	g := &genFlags{}
	flag.IntVar(&g.min, "min", 0, "Minimum candidate length")
	flag.IntVar(&g.max, "max", 0, "Maximum candidate length")
	flag.StringVar(&g.alphabet, "alphabet", "", "Explicit ordered alphabet, overrides -charset")
	flag.StringVar(&g.charset, "charset", "", "Comma separated classes: letters,digits,hyphen")
	flag.StringVar(&g.words, "words", "", "Comma separated words, a candidate must contain at least one")
	return g
}

func (g *genFlags) apply(cfg domain.GenerationConfig) domain.GenerationConfig {
	if g.min > 0 {
		cfg.MinLength = g.min
	}
	if g.max > 0 {
		cfg.MaxLength = g.max
	}
	if g.alphabet != "" {
		cfg.Alphabet = g.alphabet
	}
	if g.charset != "" {
		cfg.Charset = domain.Charset{}
		for _, c := range splitList(g.charset) {
			switch c {
			case "letters":
				cfg.Charset.Letters = true
			case "digits":
				cfg.Charset.Digits = true
			case "hyphen":
				cfg.Charset.Hyphen = true
			default:
				log.Warn().Str("class", c).Msg("Ignoring unknown character class")
			}
		}
	}
	if g.words != "" {
		cfg.WordConstraints = splitList(g.words)
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func openOutput(path string) (*os.File, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func writeLines(path string, lines []string) error {
	w, closeOutput, err := openOutput(path)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			closeOutput()
			return err
		}
	}
	return closeOutput()
}

func serve(ctx context.Context, a *app.App) {
	api := httpapi.New(a.Generator, a.Scheduler, a.Store, a.Config.Suffixes,
		httpapi.WithBaseContext(ctx),
		httpapi.WithCheckOptions(a.CheckOptions()),
	)
	srv := &http.Server{
		Addr:              a.Config.ListenAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info().Str("addr", a.Config.ListenAddr).Msg("Listening")

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
		a.Generator.Stop()
		api.Wait()
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fatal(a, err, "Server error")
		}
	}
}
