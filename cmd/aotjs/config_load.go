package main

import (
	"errors"
	"os"

	"github.com/redchew/aotjs/internal/engine"
)

// loadEngineOptions reads engine.Options from path if it exists,
// otherwise falls back to engine.DefaultOptions(). A missing config
// file is not an error -- aotjs.toml is opt-in.
func loadEngineOptions(path string) (engine.Options, error) {
	if path == "" {
		return engine.DefaultOptions(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return engine.DefaultOptions(), nil
	}
	return engine.LoadOptions(path)
}
