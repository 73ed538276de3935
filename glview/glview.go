// Package glview opens a window and renders a [trussview.Scene] with OpenGL.
//
// Controls:
//
//	W A S D    move (free-fly)
//	Ctrl       hold to capture the pointer and turn or orbit
//	Scroll     zoom (orbit)
//	Tab        switch between free-fly and orbit
//	F          toggle wireframe overlay
//	Click      select or deselect nodes
//	Esc        quit
package glview

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soypat/trussview"
	"github.com/soypat/trussview/truss"
)

const (
	defaultWidth   = 1366
	defaultHeight  = 768
	defaultTitle   = "trussview"
	defaultStacks  = 20
	defaultSectors = 20
)

// Material holds the specular parameters shared by every drawn object.
type Material struct {
	SpecularIntensity float32
	Shininess         float32
}

// DefaultMaterial is a moderately shiny surface.
var DefaultMaterial = Material{SpecularIntensity: 0.5, Shininess: 32}

// Config configures the window and draw loop. Zero values select defaults.
type Config struct {
	// Context cancels the draw loop. Run returns its error when done.
	Context context.Context
	Width   int
	Height  int
	Title   string
	// Logger receives setup, pick, reload and mode change messages.
	// Defaults to slog.Default().
	Logger *slog.Logger
	// Updates, if not nil, delivers reloaded trusses. It is drained without
	// blocking once per frame, usually from [truss.Watcher.Updates].
	Updates <-chan truss.Update
	// Material of nodes and beams. Defaults to [DefaultMaterial].
	Material Material
	// Wireframe starts with the beam wireframe overlay enabled.
	Wireframe bool
	// SphereStacks and SphereSectors set node sphere tessellation. Default 20.
	SphereStacks, SphereSectors int
}

func (cfg *Config) setDefaults() {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = defaultWidth, defaultHeight
	}
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Material == (Material{}) {
		cfg.Material = DefaultMaterial
	}
	if cfg.SphereStacks == 0 {
		cfg.SphereStacks = defaultStacks
	}
	if cfg.SphereSectors == 0 {
		cfg.SphereSectors = defaultSectors
	}
}

// Run opens a window and draws scene until the window is closed or
// cfg.Context is done. It must be called from the main goroutine with its
// OS thread locked. GPU resources are released before Run returns.
func Run(scene *trussview.Scene, cfg Config) error {
	if scene == nil {
		return errors.New("nil scene")
	}
	cfg.setDefaults()
	return run(scene, cfg)
}
