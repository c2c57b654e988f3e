package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.Command == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/v2s/config.toml"
		}
		return fmt.Errorf("engine.command is required. Set V2S_ENGINE_COMMAND env var or edit %s (create with 'v2s config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateWatch() error {
	if !c.Watch.Enabled {
		return nil
	}
	if c.Watch.Dir == "" {
		return errors.New("watch.dir must be set when watch.enabled is true")
	}
	return nil
}
