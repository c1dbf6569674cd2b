// Package config handles configuration loading.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/woozymasta/openelevation/internal/openelevation"
)

const (
	DefaultOutputDir   = "outputs"
	DefaultAddr        = "0.0.0.0"
	DefaultPort        = 8080
	DefaultMaxUploadMB = 32
)

// Config represents the root configuration file structure.
type Config struct {
	APIURL    string `yaml:"api_url,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`
	S3        S3     `yaml:"s3,omitempty"`
	Server    Server `yaml:"server,omitempty"`
	ChunkSize int    `yaml:"chunk_size,omitempty"`
}

// S3 configures the optional object storage sink. It is enabled when Bucket
// is set.
type S3 struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// Server configures the web front end.
type Server struct {
	Addr        string `yaml:"addr,omitempty"`
	Port        int    `yaml:"port,omitempty"`
	MaxUploadMB int    `yaml:"max_upload_mb,omitempty"`
}

// Load reads and parses the YAML configuration file at path. An empty path
// returns an empty configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills unset values.
func (c *Config) ApplyDefaults() {
	if c.APIURL == "" {
		c.APIURL = openelevation.DefaultURL
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = openelevation.DefaultChunkSize
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Port <= 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = DefaultMaxUploadMB
	}
}
