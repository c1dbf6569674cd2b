package main

import (
	"context"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/openelevation/internal/config"
	"github.com/woozymasta/openelevation/internal/logger"
	"github.com/woozymasta/openelevation/internal/openelevation"
	"github.com/woozymasta/openelevation/internal/processor"
	"github.com/woozymasta/openelevation/internal/sink"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"     env:"CONFIG_FILE" description:"Path to configuration file"`
	GeoJSON    string `short:"g" long:"geojson"    description:"GeoJSON input file"`
	CSV        string `short:"i" long:"csv"        description:"CSV input file, supersedes --geojson"`
	APIURL     string `short:"u" long:"api-url"    env:"API_URL"     description:"Elevation lookup endpoint"`
	ChunkSize  int    `short:"n" long:"chunk-size" env:"CHUNK_SIZE"  description:"Locations per lookup request"`
	OutputDir  string `short:"o" long:"out-dir"    env:"OUTPUT_DIR"  description:"Directory for saved outputs"`
	Stdout     string `short:"s" long:"stdout"     description:"Write a single format to stdout instead of saving" choice:"csv" choice:"geojson"`
}

func main() {
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
	if cfg.APIURL == "" {
		cfg.APIURL = opts.APIURL
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = opts.ChunkSize
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = opts.OutputDir
	}
	cfg.ApplyDefaults()

	var in processor.Input
	if opts.GeoJSON != "" {
		f, err := os.Open(opts.GeoJSON)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open GeoJSON input")
		}
		defer func() { _ = f.Close() }()
		in.GeoJSON = f
	}
	if opts.CSV != "" {
		f, err := os.Open(opts.CSV)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open CSV input")
		}
		defer func() { _ = f.Close() }()
		in.CSV = f
	}

	coords, _, err := processor.Extract(in)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load coordinates")
	}

	client := openelevation.NewClient(cfg.APIURL, openelevation.WithChunkSize(cfg.ChunkSize))

	log.Info().
		Str("api_url", client.URL()).
		Int("points", len(coords)).
		Int("chunk_size", client.ChunkSize()).
		Msg("Fetching elevations")

	ctx := context.Background()
	out, err := processor.Run(ctx, client, coords)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch elevations")
	}

	switch opts.Stdout {
	case "csv":
		writeStdout(out.Dataset.CSV)
		return
	case "geojson":
		writeStdout(out.Dataset.GeoJSON)
		return
	}

	s, err := sink.New(ctx, cfg.OutputDir, cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize output sink")
	}

	paths, err := s.Save(ctx, sink.BaseName(time.Now()), out.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to save outputs")
	}

	log.Info().Strs("paths", paths).Msg("Outputs saved")
}

func writeStdout(data []byte) {
	if _, err := os.Stdout.Write(data); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}
}
