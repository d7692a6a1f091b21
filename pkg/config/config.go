package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/dynamicpb"
)

var configFilePath = flag.String("config_file", "config.txtpb", "Path to the configuration file.")

// InitFlags initializes the flags from the config file specified by the -config_file flag.
// It should be called after defining all flags and before using them.
func InitFlags() {
	flag.Parse()

	if *configFilePath == "" {
		slog.Info("Config file not specified. Skipping config initialization.")
		return
	}
	err := loadConfigFile(*configFilePath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Config file does not exist.", "path", *configFilePath, "error", err)
		return
	}
	if err != nil { // Fall back to the flag values.
		slog.Error("Failed to load config file.", "path", *configFilePath, "error", err)
	}
}

// loadConfigFile parses the txtpb file at `path` and applies its values to the bound flags.
func loadConfigFile(path string) error {
	configBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	md, err := configDescriptor()
	if err != nil {
		return err
	}
	conf := dynamicpb.NewMessage(md)
	if err := prototext.Unmarshal(configBytes, conf); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := setConfigFlags(conf); err != nil {
		return fmt.Errorf("failed to set flags from config file: %w", err)
	}
	return nil
}
