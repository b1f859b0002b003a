package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// A compiled scene. The sphere list is stored in BVH leaf order so leaf
// primitive indices can address it directly. Both lists are read-only once
// the scene has been compiled.
type Scene struct {
	BvhNodeList []BvhNode
	SphereList  []Sphere

	// The scene camera.
	Camera *Camera
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	materialCounts := make(map[MaterialKind]int)
	for i := range sc.SphereList {
		materialCounts[sc.SphereList[i].Material.Kind]++
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", "", fmtSize(sc.SphereList, sc.BvhNodeList)})
	table.Append([]string{"", "Spheres", fmt.Sprint(len(sc.SphereList)), fmtSize(sc.SphereList)})
	table.Append([]string{"", "BVH nodes", fmt.Sprint(len(sc.BvhNodeList)), fmtSize(sc.BvhNodeList)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Materials", "---", "", ""})
	for _, kind := range []MaterialKind{Lambertian, Metal, Dielectric} {
		table.Append([]string{"", kind.String(), fmt.Sprint(materialCounts[kind]), ""})
	}
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sc.SphereList, sc.BvhNodeList), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
