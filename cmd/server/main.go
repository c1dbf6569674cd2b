package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/openelevation/internal/config"
	"github.com/woozymasta/openelevation/internal/logger"
	"github.com/woozymasta/openelevation/internal/server"
	"github.com/woozymasta/openelevation/internal/sink"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"     env:"CONFIG_FILE"    description:"Path to configuration file"`
	Addr       string `short:"a" long:"addr"       env:"LISTEN_ADDRESS" description:"Address to listen on"`
	Port       int    `short:"p" long:"port"       env:"LISTEN_PORT"    description:"Port to listen on"`
	APIURL     string `short:"u" long:"api-url"    env:"API_URL"        description:"Elevation lookup endpoint"`
	ChunkSize  int    `short:"n" long:"chunk-size" env:"CHUNK_SIZE"     description:"Locations per lookup request"`
	OutputDir  string `short:"o" long:"out-dir"    env:"OUTPUT_DIR"     description:"Directory for saved outputs"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	applyOptions(cfg, opts)
	cfg.ApplyDefaults()

	s, err := sink.New(context.Background(), cfg.OutputDir, cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize output sink")
	}

	srvCtx, err := server.NewServerContext(cfg, s)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	listenAddr := fmt.Sprintf("%s:%d", cfg.Server.Addr, cfg.Server.Port)
	log.Info().
		Str("addr", listenAddr).
		Str("api_url", cfg.APIURL).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, srvCtx.Handler()); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// applyOptions fills configuration values with command line options. Values
// from the configuration file take precedence.
func applyOptions(cfg *config.Config, opts Options) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = opts.Addr
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = opts.Port
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
}
