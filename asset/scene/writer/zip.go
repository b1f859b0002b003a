package writer

import (
	"archive/zip"
	"encoding/gob"
	"io"
	"os"
	"time"

	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/asset/scene/reader"
	"github.com/achilleasa/spheretrace/log"
)

type zipSceneWriter struct {
	logger   log.Logger
	filename string
}

// Create a new zip scene writer
func newZipSceneWriter(filename string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:   log.New("zip writer"),
		filename: filename,
	}
}

// Write compiled scene to a zip file containing the sphere and bvh node
// records and the gob-encoded camera.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef(`writing compiled scene to "%s"`, w.filename)
	start := time.Now()

	f, err := os.Create(w.filename)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := []struct {
		name    string
		writeFn func(io.Writer) error
	}{
		{reader.SphereFile, func(out io.Writer) error { return scene.EncodeSpheres(out, sc.SphereList) }},
		{reader.BvhFile, func(out io.Writer) error { return scene.EncodeBvhNodes(out, sc.BvhNodeList) }},
		{reader.CameraFile, func(out io.Writer) error { return gob.NewEncoder(out).Encode(sc.Camera) }},
	}
	for _, entry := range entries {
		out, err := zw.Create(entry.name)
		if err != nil {
			return err
		}
		if err = entry.writeFn(out); err != nil {
			return err
		}
	}
	if err = zw.Close(); err != nil {
		return err
	}

	w.logger.Noticef("wrote scene in %d ms", time.Since(start).Nanoseconds()/1000000)
	return nil
}
