package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/woozymasta/lotexport/internal/config"
	"github.com/woozymasta/lotexport/internal/logger"
	"github.com/woozymasta/lotexport/internal/lookup"
	"github.com/woozymasta/lotexport/internal/registry"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file, built-in defaults if empty"`
	Input       string `short:"i" long:"in"          description:"File with one lot identifier per line, '-' for stdin"`
	Output      string `short:"o" long:"out"         description:"Output GeoJSON file path. Writes to stdout if empty"`
	Concurrency int    `short:"j" long:"concurrency" env:"CONCURRENCY" description:"Parallel registry lookups, overrides config"`
	Pretty      bool   `short:"P" long:"pretty"      description:"Indent output JSON"`

	Args struct {
		Identifiers []string `positional-arg-name:"IDENTIFIER" description:"Lot identifiers, e.g. 43/DP12345 or 3RP123456"`
	} `positional-args:"yes"`
}

func main() {
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.Concurrency > 0 {
		cfg.Concurrency = opts.Concurrency
	}

	inputs := opts.Args.Identifiers
	if opts.Input != "" {
		lines, err := readLines(opts.Input)
		if err != nil {
			log.Fatal().Err(err).Str("path", opts.Input).Msg("Failed to read identifiers")
		}
		inputs = append(inputs, lines...)
	}

	log.Info().
		Int("inputs", len(inputs)).
		Int("concurrency", cfg.Concurrency).
		Msg("Starting fetch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resolver := lookup.NewResolver(registry.NewClient(cfg.Sources), cfg.Concurrency)
	res, err := resolver.Resolve(ctx, inputs)
	if err != nil {
		log.Fatal().Err(err).Msg("Lookup failed")
	}

	for _, raw := range res.Skipped {
		log.Warn().Str("input", raw).Msg("Skipped unrecognised identifier")
	}

	if err := writeJSON(opts.Output, res.Collection(), opts.Pretty); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}

	log.Info().
		Int("features", len(res.Features)).
		Str("out", opts.Output).
		Msg("Fetch finished successfully")
}

func readLines(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	return lines, sc.Err()
}

func writeJSON(path string, v any, pretty bool) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}

	return enc.Encode(v)
}
