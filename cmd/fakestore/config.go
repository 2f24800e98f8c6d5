package main

import (
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/go-faster/errors"
)

// Config is the fake store server configuration, loadable from environment
// variables (FAKESTORE_ prefix) or flags.
type Config struct {
	Addr            string        `default:"127.0.0.1:8099" usage:"Listen address"`
	Latency         time.Duration `default:"0s" usage:"Delay added to every response"`
	ShutdownTimeout time.Duration `default:"5s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig reads the configuration from the environment and command line.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "FAKESTORE",
		SkipFiles: true,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}
