// Package config loads tool configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/eventdeck/eventdeck/internal/blob"
)

// DataDirName is the directory the tool keeps its state in, discovered
// by walking up from the working directory.
const DataDirName = ".evd"

// Config is the resolved configuration handed to components.
type Config struct {
	// ServerURL is the base URL of the merge/sync server.
	ServerURL string

	// Token is the bearer credential for merge and sync. Usually comes
	// from the EVD_TOKEN environment variable or the --token flag.
	Token string

	// S3 holds object store settings.
	S3 blob.S3Config

	// S3KeyPrefix is prepended to every uploaded object key.
	S3KeyPrefix string

	// StockBaseURL is the CDN base for stock image variants.
	StockBaseURL string
}

// Load reads configuration from the given file (optional) plus the
// environment. EVD_-prefixed variables override file values; the raw
// S3_* variable names are also honored.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server_url", "http://localhost:3000")
	v.SetDefault("s3.image_prefix", "images/")

	v.SetEnvPrefix("EVD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The S3 settings historically came from bare environment
	// variables; keep honoring those names.
	for key, env := range map[string]string{
		"s3.bucket":       "S3_BUCKET",
		"s3.region":       "S3_REGION",
		"s3.endpoint":     "S3_ENDPOINT",
		"s3.access_key":   "S3_KEY",
		"s3.secret_key":   "S3_SECRET",
		"s3.image_prefix": "S3_IMAGE_PREFIX",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		ServerURL: strings.TrimSuffix(v.GetString("server_url"), "/"),
		Token:     v.GetString("token"),
		S3: blob.S3Config{
			Endpoint:      v.GetString("s3.endpoint"),
			Region:        v.GetString("s3.region"),
			Bucket:        v.GetString("s3.bucket"),
			AccessKey:     v.GetString("s3.access_key"),
			SecretKey:     v.GetString("s3.secret_key"),
			PublicBaseURL: v.GetString("s3.public_base_url"),
		},
		S3KeyPrefix:  v.GetString("s3.image_prefix"),
		StockBaseURL: v.GetString("stock_base_url"),
	}
	return cfg, nil
}

// FindDataDir walks up from start looking for a .evd directory and
// returns its path, or "" when none exists.
func FindDataDir(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, DataDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
