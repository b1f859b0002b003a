package reader

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/achilleasa/spheretrace/asset"
	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/log"
)

// Entry names inside compiled scene archives.
const (
	SphereFile = "spheres.bin"
	BvhFile    = "bvh.bin"
	CameraFile = "camera.bin"
)

type zipSceneReader struct {
	logger log.Logger
}

// Create a new zip scene reader
func newZipSceneReader() *zipSceneReader {
	return &zipSceneReader{
		logger: log.New("zip reader"),
	}
}

// Read compiled scene from zip file.
func (p *zipSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`parsing compiled scene from "%s"`, sceneRes.Path())
	start := time.Now()

	// zip package requires a reader implementing ReaderAt. To work around
	// this requirement we read the entire zip file into memory and create
	// a reader from the bytes package that implements ReaderAt
	data, err := io.ReadAll(sceneRes)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	sc := &scene.Scene{}
	for _, f := range zr.File {
		var decodeFn func(io.Reader) error
		switch f.Name {
		case SphereFile:
			decodeFn = func(r io.Reader) (err error) {
				sc.SphereList, err = scene.DecodeSpheres(r)
				return err
			}
		case BvhFile:
			decodeFn = func(r io.Reader) (err error) {
				sc.BvhNodeList, err = scene.DecodeBvhNodes(r)
				return err
			}
		case CameraFile:
			decodeFn = func(r io.Reader) error {
				sc.Camera = &scene.Camera{}
				return gob.NewDecoder(r).Decode(sc.Camera)
			}
		default:
			p.logger.Warningf("unknown file %s in scene zip file; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		err = decodeFn(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zipSceneReader: failed to load %s: %s", f.Name, err.Error())
		}
	}

	if sc.Camera == nil {
		return nil, fmt.Errorf("zipSceneReader: missing %s", CameraFile)
	}
	if len(sc.SphereList) > 0 && len(sc.BvhNodeList) == 0 {
		return nil, fmt.Errorf("zipSceneReader: missing %s", BvhFile)
	}
	if err = validateScene(sc); err != nil {
		return nil, err
	}

	p.logger.Noticef("loaded scene in %d ms", time.Since(start).Nanoseconds()/1000000)
	return sc, nil
}

// Ensure that the loaded data satisfies the invariants the BVH builder and
// the scene compiler guarantee, so a corrupted archive fails to load instead
// of crashing the tracers mid-render. The tree is walked from the root with
// an explicit stack; every node must be reached exactly once through in-range
// child links and no node may sit deeper than the traversal stack allows.
func validateScene(sc *scene.Scene) error {
	for index := range sc.SphereList {
		sphere := &sc.SphereList[index]
		if !(sphere.Radius > 0) {
			return fmt.Errorf("zipSceneReader: sphere %d has non-positive radius %f", index, sphere.Radius)
		}
		if sphere.Material.Kind > scene.Dielectric {
			return fmt.Errorf("zipSceneReader: sphere %d has unknown material kind %d", index, sphere.Material.Kind)
		}
	}

	numNodes := uint32(len(sc.BvhNodeList))
	if numNodes == 0 {
		return nil
	}
	numSpheres := uint64(len(sc.SphereList))

	type entry struct {
		node  uint32
		depth int
	}
	visited := make([]bool, numNodes)
	stack := []entry{{node: 0, depth: 0}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[cur.node] {
			return fmt.Errorf("zipSceneReader: bvh node %d is referenced more than once", cur.node)
		}
		visited[cur.node] = true
		if cur.depth >= scene.MaxBvhDepth {
			return fmt.Errorf("zipSceneReader: bvh node %d at depth %d exceeds the max tree depth of %d", cur.node, cur.depth, scene.MaxBvhDepth-1)
		}

		node := &sc.BvhNodeList[cur.node]
		if node.IsLeaf() {
			first := uint64(-int64(node.LData))
			if node.RData < 0 || first+uint64(node.RData) > numSpheres {
				return fmt.Errorf("zipSceneReader: bvh node %d references spheres [%d, %d) out of %d", cur.node, first, first+uint64(node.RData), numSpheres)
			}
			continue
		}

		left, right := node.GetChildNodes()
		if left == 0 || right == 0 || left >= numNodes || right >= numNodes {
			return fmt.Errorf("zipSceneReader: bvh node %d references invalid children (%d, %d) out of %d", cur.node, left, right, numNodes)
		}
		stack = append(stack, entry{right, cur.depth + 1}, entry{left, cur.depth + 1})
	}

	for index, seen := range visited {
		if !seen {
			return fmt.Errorf("zipSceneReader: bvh node %d is not reachable from the root", index)
		}
	}
	return nil
}
