package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rigel-pt/rigel/asset/texture"
	"github.com/rigel-pt/rigel/types"
)

// Bvh nodes are comprised of two Vec3 and two multipurpose int32 parameters
// whose value depends on the node type:
//
// - For non-leaf nodes (top/bottom BVH) they are both >0 and point to the L/R child nodes
// - For top BVH leafs:
//   - left data is <= 0 and points to the mesh instance index
// - For bottom BVH leafs:
//   - left data is <= 0 and points to the first triangle primitive index
//   - right data is >0 and contains the count of leaf primitives
type BvhNode struct {
	Min   types.Vec3
	LData int32

	Max   types.Vec3
	RData int32
}

// Set bounding box.
func (n *BvhNode) SetBBox(bbox [2]types.Vec3) {
	n.Min = bbox[0]
	n.Max = bbox[1]
}

// Set left and right child node indices.
func (n *BvhNode) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Get left and right child node indices.
func (n *BvhNode) GetChildNodes() (left, right uint32) {
	return uint32(n.LData), uint32(n.RData)
}

// Returns true if this is a leaf node.
func (n *BvhNode) IsLeaf() bool {
	return n.LData <= 0
}

// Set mesh instance index.
func (n *BvhNode) SetMeshIndex(index uint32) {
	n.LData = -int32(index)
}

// Get mesh instance index.
func (n *BvhNode) GetMeshIndex() (index uint32) {
	return uint32(-n.LData)
}

// Set primitive index and count.
func (n *BvhNode) SetPrimitives(firstPrimIndex, count uint32) {
	n.LData = -int32(firstPrimIndex)
	n.RData = int32(count)
}

// Get primitive index and count.
func (n *BvhNode) GetPrimitives() (firstPrimIndex, count uint32) {
	return uint32(-n.LData), uint32(n.RData)
}

// Add offset to indices of child nodes.
func (n *BvhNode) OffsetChildNodes(offset int32) {
	// Ignore leafs
	if n.IsLeaf() {
		return
	}

	n.LData += offset
	n.RData += offset
}

// A resolved, flattened material description. The scene compiler folds the
// declarative layer expressions of each material into one record carrying
// all parameter blocks a surface layer can bind. The shading pipeline reads
// the blocks relevant to the lobe it samples; the specular sampler only
// consumes the tint and its optional texture.
type MaterialRecord struct {
	// Base color of the surface.
	Tint types.Vec3

	// Texture modulating the tint; -1 when the material is untextured.
	TintTex int32

	// Per-channel interior index of refraction.
	IOR types.Vec3

	// Per-channel extinction coefficient of the interior medium.
	Extinction types.Vec3

	// Anisotropic roughness of the glossy base layer.
	Roughness types.Vec2

	// Emitted radiance premultiplied by its scale.
	Radiance types.Vec3

	// Blend weight of the perfect specular lobe over the base layers.
	SpecularWeight float32
}

// The MeshInstance structure places a copy of a scene mesh inside the
// scene. Geometry buffers store object-space data; the instance carries the
// object-to-world matrix and its precomputed inverse. Rays are traversed in
// object space through InvTransform and normals return to world space
// through the transpose of its upper-left 3x3 block.
type MeshInstance struct {
	MeshIndex uint32

	// The BVH tree root for the mesh geometry. This is shared by all
	// instances of the same mesh.
	BvhRoot uint32

	Transform    types.Mat4
	InvTransform types.Mat4
}

// The texture metadata. All texture data is stored as a contiguous memory block.
type TextureMetadata struct {
	// Texture format.
	Format texture.Format

	// Texture dimensions.
	Width  uint32
	Height uint32

	// Offset to the beginning of texture data.
	DataOffset uint32
}

// Scene is the compiled, immutable representation consumed by the tracing
// pipeline. Geometry is stored as flat index/attribute buffers: primitive i
// reads the attribute indices at IndexList[3i : 3i+3] and its material at
// MaterialIndex[i].
type Scene struct {
	BvhNodeList      []BvhNode
	MeshInstanceList []MeshInstance
	MaterialList     []MaterialRecord

	// Texture definitions and the associated data.
	TextureData     []byte
	TextureMetadata []TextureMetadata

	IndexList     []uint32
	VertexList    []types.Vec3
	NormalList    []types.Vec3
	UvList        []types.Vec2
	MaterialIndex []uint32
}

// Get the number of triangle primitives in the scene.
func (sc *Scene) PrimitiveCount() uint32 {
	return uint32(len(sc.IndexList) / 3)
}

// Fetch a bilinearly filtered texel for the texture with the given index.
// This is the sampling entry point the shading pipeline resolves tint
// textures through.
func (sc *Scene) SampleTexture(texIndex int32, uv types.Vec2) types.Vec4 {
	md := &sc.TextureMetadata[texIndex]
	data := sc.TextureData[md.DataOffset:]
	return texture.SampleBilinear(md.Format, md.Width, md.Height, data, uv)
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Size"})
	table.Append([]string{"Geometry", "---", fmtSize(sc.VertexList, sc.NormalList, sc.UvList, sc.IndexList, sc.BvhNodeList)})
	table.Append([]string{"", "Vertices", fmtSize(sc.VertexList)})
	table.Append([]string{"", "Normals", fmtSize(sc.NormalList)})
	table.Append([]string{"", "UVs", fmtSize(sc.UvList)})
	table.Append([]string{"", "Indices", fmtSize(sc.IndexList)})
	table.Append([]string{"", "BVH", fmtSize(sc.BvhNodeList)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Instances", "---", fmtSize(sc.MeshInstanceList)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Materials", "---", fmtSize(sc.MaterialIndex, sc.MaterialList)})
	table.Append([]string{"", "Mat. indices", fmtSize(sc.MaterialIndex)})
	table.Append([]string{"", "Mat. records", fmtSize(sc.MaterialList)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Textures", "---", fmtSize(sc.TextureMetadata, sc.TextureData)})
	table.Append([]string{"", "Metadata", fmtSize(sc.TextureMetadata)})
	table.Append([]string{"", "Data", fmtSize(sc.TextureData)})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(sc.VertexList, sc.NormalList, sc.UvList, sc.IndexList, sc.BvhNodeList, sc.MeshInstanceList, sc.MaterialList, sc.MaterialIndex, sc.TextureMetadata, sc.TextureData), " ")})

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
