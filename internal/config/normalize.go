package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeEngine(); err != nil {
		return err
	}
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEngine() error {
	c.Engine.Command = strings.TrimSpace(c.Engine.Command)
	if c.Engine.Command == "" {
		if value, ok := os.LookupEnv("V2S_ENGINE_COMMAND"); ok {
			c.Engine.Command = strings.TrimSpace(value)
		}
	}
	if len(c.Engine.Args) > 0 {
		args := make([]string, 0, len(c.Engine.Args))
		for _, arg := range c.Engine.Args {
			if trimmed := strings.TrimSpace(arg); trimmed != "" {
				args = append(args, trimmed)
			}
		}
		c.Engine.Args = args
	}
	if strings.TrimSpace(c.Engine.Workdir) != "" {
		expanded, err := expandPath(c.Engine.Workdir)
		if err != nil {
			return fmt.Errorf("engine.workdir: %w", err)
		}
		c.Engine.Workdir = expanded
	} else {
		c.Engine.Workdir = ""
	}
	return nil
}

func (c *Config) normalizeWatch() error {
	if strings.TrimSpace(c.Watch.Dir) == "" {
		c.Watch.Dir = ""
		return nil
	}
	expanded, err := expandPath(c.Watch.Dir)
	if err != nil {
		return fmt.Errorf("watch.dir: %w", err)
	}
	c.Watch.Dir = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
