package writer

import (
	"fmt"
	"os"

	"github.com/achilleasa/spheretrace/asset/compiler/input"
	"github.com/achilleasa/spheretrace/asset/scene"
	"gopkg.in/yaml.v3"
)

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition
	Write(*scene.Scene) error
}

// Write compiled scene to a zip archive.
func WriteScene(sc *scene.Scene, filename string) error {
	writer := newZipSceneWriter(filename)
	return writer.Write(sc)
}

// Write a scene description in yaml format.
func WriteDescription(raw *input.Scene, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err = enc.Encode(raw); err != nil {
		return fmt.Errorf("writeDescription: %s", err.Error())
	}
	return enc.Close()
}
