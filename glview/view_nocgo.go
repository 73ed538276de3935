//go:build tinygo || !cgo

package glview

import (
	"errors"

	"github.com/soypat/trussview"
)

func run(scene *trussview.Scene, cfg Config) error {
	return errors.New("require cgo for OpenGL rendering")
}
