package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/quad/engine/assets/loaders"
	"github.com/spaghettifunk/quad/engine/core"
	"github.com/spaghettifunk/quad/engine/math"
)

type WindowConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position x axis.
	X int `toml:"x"`
	// Window starting position y axis.
	Y int `toml:"y"`
	// Window starting width.
	Width int `toml:"width"`
	// Window starting height.
	Height int  `toml:"height"`
	VSync  bool `toml:"vsync"`
}

type RenderConfig struct {
	ClearColor [4]float32 `toml:"clear_color"`
	// Check for driver errors around every GL call.
	Debug   bool `toml:"debug"`
	GLMajor int  `toml:"gl_major"`
	GLMinor int  `toml:"gl_minor"`
}

type ShaderConfig struct {
	// Stage files, relative to the assets directory.
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
	// Rebuild the program when a stage file changes on disk.
	Watch bool `toml:"watch"`
}

type ApplicationConfig struct {
	LogLevel  string       `toml:"log_level"`
	AssetsDir string       `toml:"assets_dir"`
	Window    WindowConfig `toml:"window"`
	Render    RenderConfig `toml:"render"`
	Shaders   ShaderConfig `toml:"shaders"`
}

func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		LogLevel:  "info",
		AssetsDir: "assets",
		Window: WindowConfig{
			Name:   "Quad",
			X:      100,
			Y:      100,
			Width:  960,
			Height: 540,
			VSync:  true,
		},
		Render: RenderConfig{
			ClearColor: [4]float32{0.0, 0.0, 0.0, 1.0},
			Debug:      true,
			GLMajor:    3,
			GLMinor:    3,
		},
		Shaders: ShaderConfig{
			Vertex:   "shaders/basic.vert",
			Fragment: "shaders/basic.frag",
			Watch:    true,
		},
	}
}

// LoadConfig reads a TOML config over the defaults. A missing file yields
// the defaults; unknown keys are an error.
func LoadConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultConfig()

	cl := &loaders.ConfigLoader{}
	r, err := cl.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogInfo("no config at %s, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer cl.Unload(r)

	dec := toml.NewDecoder(bytes.NewReader(r.Data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("config %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Render.GLMajor < 3 || (c.Render.GLMajor == 3 && c.Render.GLMinor < 3) {
		return fmt.Errorf("OpenGL 3.3 or later is required, got %d.%d", c.Render.GLMajor, c.Render.GLMinor)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		return errors.New("both shader stages must be set")
	}
	for _, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("clear colour components must be in [0, 1], got %v", c.Render.ClearColor)
		}
	}
	return nil
}

func (c *ApplicationConfig) ClearColor() math.Vec4 {
	return math.Vec4FromSlice(c.Render.ClearColor[:])
}
