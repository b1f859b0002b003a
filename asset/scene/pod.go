package scene

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Size in bytes of an encoded sphere record.
	SphereRecordSize = 64

	// Size in bytes of an encoded BVH node record.
	BvhNodeRecordSize = 32

	// Upper bound for the record count header; protects decoders against
	// corrupted input.
	maxRecords = 1 << 26
)

// The binary sphere record. The padding keeps every vector 16-byte aligned
// which matches the std430 layout used by compute backends.
type spherePod struct {
	Center [3]float32
	_      float32
	Radius float32
	_      [3]float32
	Data   [4]float32
	Kind   uint32
	_      [3]uint32
}

// Write spheres as a little-endian record count followed by fixed-size records.
func EncodeSpheres(w io.Writer, spheres []Sphere) error {
	pods := make([]spherePod, len(spheres))
	for i := range spheres {
		pods[i] = spherePod{
			Center: spheres[i].Center,
			Radius: spheres[i].Radius,
			Data:   spheres[i].Material.Data,
			Kind:   uint32(spheres[i].Material.Kind),
		}
	}
	return encodeRecords(w, pods, len(pods))
}

// Read spheres written by EncodeSpheres.
func DecodeSpheres(r io.Reader) ([]Sphere, error) {
	count, err := readRecordCount(r)
	if err != nil {
		return nil, err
	}

	pods := make([]spherePod, count)
	if err = binary.Read(r, binary.LittleEndian, pods); err != nil {
		return nil, fmt.Errorf("scene: could not decode sphere records: %w", err)
	}

	spheres := make([]Sphere, count)
	for i := range pods {
		spheres[i] = Sphere{
			Center: pods[i].Center,
			Radius: pods[i].Radius,
			Material: Material{
				Data: pods[i].Data,
				Kind: MaterialKind(pods[i].Kind),
			},
		}
	}
	return spheres, nil
}

// Write BVH nodes as a little-endian record count followed by fixed-size records.
func EncodeBvhNodes(w io.Writer, nodes []BvhNode) error {
	return encodeRecords(w, nodes, len(nodes))
}

// Read BVH nodes written by EncodeBvhNodes.
func DecodeBvhNodes(r io.Reader) ([]BvhNode, error) {
	count, err := readRecordCount(r)
	if err != nil {
		return nil, err
	}

	nodes := make([]BvhNode, count)
	if err = binary.Read(r, binary.LittleEndian, nodes); err != nil {
		return nil, fmt.Errorf("scene: could not decode bvh node records: %w", err)
	}
	return nodes, nil
}

func encodeRecords(w io.Writer, records interface{}, count int) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(count)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, records)
}

func readRecordCount(r io.Reader) (uint32, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, fmt.Errorf("scene: could not read record count: %w", err)
	}
	if count > maxRecords {
		return 0, fmt.Errorf("scene: record count %d exceeds limit of %d", count, maxRecords)
	}
	return count, nil
}
