// Package config reads textpipe settings from environment and pipeline
// definitions from YAML documents.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/pipelined/textpipe/fitting"
	"github.com/pipelined/textpipe/log"
)

// Prefix of all environment variables.
const Prefix = "textpipe"

// Env holds settings read from TEXTPIPE_* environment variables.
type Env struct {
	log.Config
	Capacity int `envconfig:"CAPACITY" default:"1024"`
}

// Load loads settings from environment variables.
func Load() (Env, error) {
	var env Env
	if err := envconfig.Process(Prefix, &env); err != nil {
		return Env{}, fmt.Errorf("failed to load environment: %w", err)
	}
	if env.Capacity < 1 {
		env.Capacity = fitting.DefaultCapacity
	}
	return env, nil
}
