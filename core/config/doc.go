// Package config loads typed configuration from environment variables.
//
// A .env file in the working directory is read once on first use, then
// struct fields are filled through caarlos0/env tags:
//
//	type Config struct {
//		AppName string        `env:"APP_NAME" envDefault:"livefeed"`
//		Server  server.Config
//		Hub     realtime.Config
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Every struct type is parsed once per process and cached, so packages can
// call Load for their own Config without re-reading the environment.
package config
