package reader

import (
	"fmt"
	"time"

	"github.com/achilleasa/spheretrace/asset"
	"github.com/achilleasa/spheretrace/asset/compiler"
	"github.com/achilleasa/spheretrace/asset/compiler/input"
	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/log"
	"gopkg.in/yaml.v3"
)

type yamlSceneReader struct {
	logger log.Logger
	opts   compiler.Options
}

func newYamlSceneReader(opts compiler.Options) *yamlSceneReader {
	return &yamlSceneReader{
		logger: log.New("yaml reader"),
		opts:   opts,
	}
}

// Parse a scene description and compile it.
func (p *yamlSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`parsing scene description from "%s"`, sceneRes.Path())
	start := time.Now()

	raw, err := ParseDescription(sceneRes)
	if err != nil {
		return nil, err
	}

	p.logger.Noticef("parsed scene description in %d ms", time.Since(start).Nanoseconds()/1000000)
	return compiler.Compile(raw, p.opts)
}

// Parse a yaml scene description. Unknown keys are rejected.
func ParseDescription(sceneRes *asset.Resource) (*input.Scene, error) {
	raw := input.NewScene()
	dec := yaml.NewDecoder(sceneRes)
	dec.KnownFields(true)
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("yamlSceneReader: failed to parse %s: %s", sceneRes.Path(), err.Error())
	}
	if raw.Materials == nil {
		raw.Materials = make(map[string]*input.Material)
	}
	return raw, nil
}
