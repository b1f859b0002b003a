package reader

import (
	"fmt"

	"github.com/achilleasa/spheretrace/asset"
	"github.com/achilleasa/spheretrace/asset/compiler"
	"github.com/achilleasa/spheretrace/asset/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or http(s) URL. Scene descriptions (.yaml,
// .yml) are compiled using the supplied compiler options; compiled scenes
// (.zip) are loaded as-is.
func ReadScene(filename string, opts compiler.Options) (*scene.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	// Select reader based on file extension
	var reader Reader
	switch res.Ext() {
	case ".yaml", ".yml":
		reader = newYamlSceneReader(opts)
	case ".zip":
		reader = newZipSceneReader()
	default:
		return nil, fmt.Errorf("readScene: unsupported file format %q", res.Ext())
	}
	return reader.Read(res)
}
