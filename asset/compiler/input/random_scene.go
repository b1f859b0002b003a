package input

import (
	"fmt"
	"math/rand"

	"github.com/achilleasa/spheretrace/types"
)

// Generate the random spheres scene: a large ground sphere, a grid of small
// spheres with randomly selected materials and three large feature spheres.
// The output only depends on the seed.
func RandomScene(seed int64) *Scene {
	rng := rand.New(rand.NewSource(seed))
	randVec := func(min, max float32) types.Vec3 {
		return types.XYZ(
			min+(max-min)*rng.Float32(),
			min+(max-min)*rng.Float32(),
			min+(max-min)*rng.Float32(),
		)
	}

	sc := NewScene()
	sc.Camera = Camera{
		LookFrom:  types.XYZ(13, 2, 3),
		LookAt:    types.XYZ(0, 0, 0),
		Up:        types.XYZ(0, 1, 0),
		FOV:       20,
		Aperture:  0.1,
		FocusDist: 10,
	}

	sc.Materials["ground"] = &Material{Type: LambertianMaterial, Albedo: types.XYZ(0.5, 0.5, 0.5)}
	sc.Spheres = append(sc.Spheres, Sphere{Center: types.XYZ(0, -1000, 0), Radius: 1000, Material: "ground"})

	sc.Materials["glass"] = &Material{Type: DielectricMaterial, RefractionIndex: 1.5}
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := rng.Float32()
			center := types.XYZ(float32(a)+0.9*rng.Float32(), 0.2, float32(b)+0.9*rng.Float32())
			if center.Sub(types.XYZ(4, 0.2, 0)).Len() <= 0.9 {
				continue
			}

			var matName string
			switch {
			case chooseMat < 0.8:
				matName = fmt.Sprintf("diffuse_%d_%d", a, b)
				sc.Materials[matName] = &Material{
					Type:   LambertianMaterial,
					Albedo: randVec(0, 1).MulVec(randVec(0, 1)),
				}
			case chooseMat < 0.95:
				matName = fmt.Sprintf("metal_%d_%d", a, b)
				sc.Materials[matName] = &Material{
					Type:   MetalMaterial,
					Albedo: randVec(0.5, 1),
					Fuzz:   0.5 * rng.Float32(),
				}
			default:
				matName = "glass"
			}

			sc.Spheres = append(sc.Spheres, Sphere{Center: center, Radius: 0.2, Material: matName})
		}
	}

	sc.Materials["feature_diffuse"] = &Material{Type: LambertianMaterial, Albedo: types.XYZ(0.4, 0.2, 0.1)}
	sc.Materials["feature_metal"] = &Material{Type: MetalMaterial, Albedo: types.XYZ(0.7, 0.6, 0.5)}
	sc.Spheres = append(sc.Spheres,
		Sphere{Center: types.XYZ(0, 1, 0), Radius: 1, Material: "glass"},
		Sphere{Center: types.XYZ(-4, 1, 0), Radius: 1, Material: "feature_diffuse"},
		Sphere{Center: types.XYZ(4, 1, 0), Radius: 1, Material: "feature_metal"},
	)

	return sc
}
