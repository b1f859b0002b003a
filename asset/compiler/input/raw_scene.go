package input

import "github.com/achilleasa/spheretrace/types"

// Supported material type names.
const (
	LambertianMaterial = "lambertian"
	MetalMaterial      = "metal"
	DielectricMaterial = "dielectric"
)

type Material struct {
	Type   string     `yaml:"type"`
	Albedo types.Vec3 `yaml:"albedo,flow"`

	// Metal only.
	Fuzz float32 `yaml:"fuzz,omitempty"`

	// Dielectric only.
	RefractionIndex float32 `yaml:"refraction_index,omitempty"`
}

type Sphere struct {
	Center   types.Vec3 `yaml:"center,flow"`
	Radius   float32    `yaml:"radius"`
	Material string     `yaml:"material"`
}

type Camera struct {
	LookFrom types.Vec3 `yaml:"look_from,flow"`
	LookAt   types.Vec3 `yaml:"look_at,flow"`
	Up       types.Vec3 `yaml:"up,flow"`

	// Vertical field of view in degrees.
	FOV float32 `yaml:"vfov"`

	Aperture  float32 `yaml:"aperture,omitempty"`
	FocusDist float32 `yaml:"focus_distance,omitempty"`

	// Shutter open and close times.
	Shutter [2]float32 `yaml:"shutter,flow,omitempty"`
}

// A scene description as produced by a scene reader or generator. Spheres
// reference materials by name.
type Scene struct {
	Camera    Camera               `yaml:"camera"`
	Materials map[string]*Material `yaml:"materials"`
	Spheres   []Sphere             `yaml:"spheres"`
}

// Create an empty scene with a default camera.
func NewScene() *Scene {
	return &Scene{
		Camera: Camera{
			LookFrom: types.XYZ(0, 0, 0),
			LookAt:   types.XYZ(0, 0, -1),
			Up:       types.XYZ(0, 1, 0),
			FOV:      90,
		},
		Materials: make(map[string]*Material),
	}
}
