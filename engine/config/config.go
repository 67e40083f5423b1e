package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/tessera/engine/core"
)

/** @brief Window placement and title. */
type Application struct {
	Name   string `toml:"name"`
	StartX int32  `toml:"start_x"`
	StartY int32  `toml:"start_y"`
	Width  int32  `toml:"width"`
	Height int32  `toml:"height"`
}

type Log struct {
	Level core.LogLevel `toml:"level"`
	/** @brief Log creation and deletion of native graphics and audio objects. */
	GenObjects bool `toml:"gen_objects"`
}

type Renderer struct {
	/** @brief "opengl" or "headless". */
	Backend string `toml:"backend"`
	/** @brief Check the graphics API error state after every call. */
	DebugChecks     bool `toml:"debug_checks"`
	MaxTextureUnits int  `toml:"max_texture_units"`
	/** @brief Capacity of the render thread command queue. */
	QueueSize int `toml:"queue_size"`
}

type Audio struct {
	/** @brief Number of voices in the immediate playback ring. */
	Voices     int `toml:"voices"`
	SampleRate int `toml:"sample_rate"`
	BufferMs   int `toml:"buffer_ms"`
}

type Assets struct {
	Dir string `toml:"dir"`
	/** @brief Reload shaders when their sources change. */
	Watch bool `toml:"watch"`
}

type Config struct {
	Application Application `toml:"application"`
	Log         Log         `toml:"log"`
	Renderer    Renderer    `toml:"renderer"`
	Audio       Audio       `toml:"audio"`
	Assets      Assets      `toml:"assets"`
}

const (
	BackendOpenGL   = "opengl"
	BackendHeadless = "headless"
)

func Default() *Config {
	return &Config{
		Application: Application{
			Name:   "Tessera Testbed",
			StartX: 100,
			StartY: 100,
			Width:  1280,
			Height: 720,
		},
		Log: Log{
			Level: core.InfoLevel,
		},
		Renderer: Renderer{
			Backend:         BackendOpenGL,
			DebugChecks:     true,
			MaxTextureUnits: 16,
			QueueSize:       256,
		},
		Audio: Audio{
			Voices:     16,
			SampleRate: 44100,
			BufferMs:   100,
		},
		Assets: Assets{
			Dir:   "assets",
			Watch: true,
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("config file %s not found, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes data over the defaults and validates the result. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("config: line %d column %d: %s: %w", row, col, derr.String(), core.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("config: %s: %w", err, core.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	invalid := func(field string, value interface{}) error {
		return fmt.Errorf("config: invalid %s %v: %w", field, value, core.ErrInvalidArgument)
	}
	switch c.Renderer.Backend {
	case BackendOpenGL, BackendHeadless:
	default:
		return invalid("renderer.backend", c.Renderer.Backend)
	}
	switch c.Log.Level {
	case core.DebugLevel, core.InfoLevel, core.WarnLevel, core.ErrorLevel:
	default:
		return invalid("log.level", c.Log.Level)
	}
	if c.Application.Width <= 0 || c.Application.Height <= 0 {
		return invalid("application size", fmt.Sprintf("%dx%d", c.Application.Width, c.Application.Height))
	}
	if c.Renderer.MaxTextureUnits <= 0 {
		return invalid("renderer.max_texture_units", c.Renderer.MaxTextureUnits)
	}
	if c.Renderer.QueueSize <= 0 {
		return invalid("renderer.queue_size", c.Renderer.QueueSize)
	}
	if c.Audio.Voices <= 0 {
		return invalid("audio.voices", c.Audio.Voices)
	}
	if c.Audio.SampleRate <= 0 {
		return invalid("audio.sample_rate", c.Audio.SampleRate)
	}
	if c.Audio.BufferMs <= 0 {
		return invalid("audio.buffer_ms", c.Audio.BufferMs)
	}
	return nil
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
