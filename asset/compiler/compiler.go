package compiler

import (
	"fmt"
	"time"

	"github.com/rigel-pt/rigel/asset"
	"github.com/rigel-pt/rigel/asset/compiler/bvh"
	"github.com/rigel-pt/rigel/asset/compiler/input"
	"github.com/rigel-pt/rigel/asset/material"
	"github.com/rigel-pt/rigel/asset/scene"
	"github.com/rigel-pt/rigel/asset/texture"
	"github.com/rigel-pt/rigel/log"
	"github.com/rigel-pt/rigel/types"
)

const minPrimitivesPerLeaf = 10

type sceneCompiler struct {
	parsedScene    *input.Scene
	optimizedScene *scene.Scene
	logger         log.Logger

	// A map of a texture path to its index. This cache allows us to
	// re-use already loaded textures when referenced by multiple materials.
	texIndexCache map[string]int32
}

// Compile a scene representation parsed by a scene reader into the flattened
// buffer format consumed by the tracing pipeline.
func Compile(parsedScene *input.Scene) (*scene.Scene, error) {
	compiler := &sceneCompiler{
		parsedScene:    parsedScene,
		optimizedScene: &scene.Scene{},
		logger:         log.New("scene compiler"),
		texIndexCache:  make(map[string]int32),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	var err error
	err = compiler.resolveMaterials()
	if err != nil {
		return nil, err
	}

	err = compiler.partitionGeometry()
	if err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.optimizedScene, nil
}

// Parse and validate each material expression and flatten it into a material
// record. Blended expressions are collapsed by accumulating the tint and
// radiance of each layer weighted by its blend contribution; the surface
// parameters (ior, extinction, roughness) of the last layer that specifies
// them win. Texture references encountered while walking the expression are
// baked into the scene texture buffers.
func (sc *sceneCompiler) resolveMaterials() error {
	start := time.Now()
	sc.logger.Noticef("processing %d materials", len(sc.parsedScene.Materials))

	sc.optimizedScene.MaterialList = make([]scene.MaterialRecord, len(sc.parsedScene.Materials))
	for matIndex, mat := range sc.parsedScene.Materials {
		sc.logger.Infof(`processing material "%s"`, mat.Name)

		exprNode, err := material.ParseExpression(mat.Expression)
		if err != nil {
			return fmt.Errorf("material %q: %v", mat.Name, err)
		}
		err = exprNode.Validate()
		if err != nil {
			return fmt.Errorf("material %q: %v", mat.Name, err)
		}

		record := &sc.optimizedScene.MaterialList[matIndex]
		record.TintTex = -1
		record.IOR = material.DefaultIntIOR
		record.Roughness = material.DefaultRoughness

		err = sc.resolveNode(record, exprNode, 1.0, mat)
		if err != nil {
			return fmt.Errorf("material %q: %v", mat.Name, err)
		}
	}

	sc.logger.Noticef("processed %d materials in %d ms", len(sc.parsedScene.Materials), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Fold a (possibly nested) material expression node into a material record.
// The weight argument tracks the accumulated blend contribution of the node
// that is currently visited.
func (sc *sceneCompiler) resolveNode(record *scene.MaterialRecord, node material.ExprNode, weight float32, mat *input.Material) error {
	switch t := node.(type) {
	case material.BlendNode:
		err := sc.resolveNode(record, t.Expressions[0], weight*(1.0-t.Weight), mat)
		if err != nil {
			return err
		}
		return sc.resolveNode(record, t.Expressions[1], weight*t.Weight, mat)
	case material.LayerNode:
		tint := material.DefaultTint
		radiance := material.DefaultRadiance
		scale := material.DefaultRadianceScale

		for _, param := range t.Parameters {
			switch param.Name {
			case material.ParamTint:
				tint = types.Vec3(param.Value.(material.Vec3Node))
			case material.ParamTexture:
				texIndex, err := sc.bakeTexture(string(param.Value.(material.TextureNode)), mat)
				if err != nil {
					return err
				}
				if record.TintTex == -1 {
					record.TintTex = texIndex
				}
			case material.ParamIOR:
				switch v := param.Value.(type) {
				case material.FloatNode:
					record.IOR = types.Vec3{float32(v), float32(v), float32(v)}
				case material.Vec3Node:
					record.IOR = types.Vec3(v)
				case material.IORNameNode:
					// Lookup cannot fail; Validate resolved the name.
					record.IOR, _ = material.IOR(string(v))
				}
			case material.ParamExtinction:
				record.Extinction = types.Vec3(param.Value.(material.Vec3Node))
			case material.ParamRoughness:
				switch v := param.Value.(type) {
				case material.FloatNode:
					record.Roughness = types.Vec2{float32(v), float32(v)}
				case material.Vec2Node:
					record.Roughness = types.Vec2(v)
				}
			case material.ParamRadiance:
				radiance = types.Vec3(param.Value.(material.Vec3Node))
			case material.ParamScale:
				scale = float32(param.Value.(material.FloatNode))
			}
		}

		switch t.Type {
		case material.LayerEmissive:
			record.Radiance = record.Radiance.Add(radiance.Mul(scale * weight))
		case material.LayerSpecular:
			record.SpecularWeight += weight
			record.Roughness = types.Vec2{}
			record.Tint = record.Tint.Add(tint.Mul(weight))
		default:
			record.Tint = record.Tint.Add(tint.Mul(weight))
		}
		return nil
	}
	return fmt.Errorf("unsupported expression node %#+v", node)
}

// Load a texture resource, append its data to the scene texture buffers and
// return its index. Textures already baked by another material are re-used.
func (sc *sceneCompiler) bakeTexture(texPath string, mat *input.Material) (int32, error) {
	texIndex, exists := sc.texIndexCache[texPath]
	if exists {
		sc.logger.Infof(`"%s": re-using already baked texture "%s"`, mat.Name, texPath)
		return texIndex, nil
	}

	sc.logger.Infof(`"%s": baking texture "%s"`, mat.Name, texPath)
	res, err := asset.NewResource(texPath, mat.AssetRelPath)
	if err != nil {
		return -1, err
	}
	defer res.Close()

	tex, err := texture.New(res)
	if err != nil {
		return -1, err
	}

	texIndex = int32(len(sc.optimizedScene.TextureMetadata))
	sc.optimizedScene.TextureMetadata = append(sc.optimizedScene.TextureMetadata, scene.TextureMetadata{
		Format:     tex.Format,
		Width:      tex.Width,
		Height:     tex.Height,
		DataOffset: uint32(len(sc.optimizedScene.TextureData)),
	})
	sc.optimizedScene.TextureData = append(sc.optimizedScene.TextureData, tex.Data...)
	sc.texIndexCache[texPath] = texIndex
	return texIndex, nil
}

// Vertices that share the same attribute triple within a mesh are assigned a
// single slot in the scene attribute buffers.
type vertexAttribs struct {
	position types.Vec3
	normal   types.Vec3
	uv       types.Vec2
}

// Generate a two-level BVH tree for the scene. The top level BVH tree
// partitions the mesh instances. An additional BVH tree is also generated for
// each defined scene mesh. Each mesh instance points to the root BVH node of
// a mesh. While the per-mesh trees are built, the primitives referenced by
// each leaf are flattened into the shared index and attribute buffers.
func (sc *sceneCompiler) partitionGeometry() error {
	start := time.Now()
	sc.logger.Infof("building scene BVH tree (%d meshes, %d mesh instances)", len(sc.parsedScene.Meshes), len(sc.parsedScene.MeshInstances))

	if len(sc.parsedScene.MeshInstances) == 0 {
		return fmt.Errorf("compiler: scene contains no mesh instances")
	}

	// Partition mesh instances so that each instance ends up in its own leaf.
	volList := make([]bvh.BoundedVolume, len(sc.parsedScene.MeshInstances))
	for index, mi := range sc.parsedScene.MeshInstances {
		volList[index] = mi
	}
	sc.optimizedScene.BvhNodeList = bvh.Build(volList, 1, func(node *scene.BvhNode, workList []bvh.BoundedVolume) {
		pmi := workList[0].(*input.MeshInstance)

		for index, mi := range sc.parsedScene.MeshInstances {
			if pmi == mi {
				node.SetMeshIndex(uint32(index))
				break
			}
		}
	}, bvh.SurfaceAreaHeuristic)

	// Scan all meshes and calculate the size of the attribute buffers so
	// that appends while flattening do not trigger continuous allocations.
	totalPrimitives := 0
	for _, pm := range sc.parsedScene.Meshes {
		totalPrimitives += len(pm.Primitives)
	}
	sc.optimizedScene.IndexList = make([]uint32, 0, 3*totalPrimitives)
	sc.optimizedScene.VertexList = make([]types.Vec3, 0, 3*totalPrimitives)
	sc.optimizedScene.NormalList = make([]types.Vec3, 0, 3*totalPrimitives)
	sc.optimizedScene.UvList = make([]types.Vec2, 0, 3*totalPrimitives)
	sc.optimizedScene.MaterialIndex = make([]uint32, 0, totalPrimitives)

	// Partition each mesh into its own BVH. Update all instances to point
	// to the root mesh BVH node.
	var primOffset uint32
	meshBvhRoots := make([]uint32, len(sc.parsedScene.Meshes))
	for mIndex, pm := range sc.parsedScene.Meshes {
		volList := make([]bvh.BoundedVolume, len(pm.Primitives))
		for index, prim := range pm.Primitives {
			volList[index] = prim
		}

		vertexCache := make(map[vertexAttribs]uint32, 3*len(pm.Primitives))

		sc.logger.Infof(`building BVH tree for "%s" (%d primitives)`, pm.Name, len(pm.Primitives))
		bvhNodes := bvh.Build(volList, minPrimitivesPerLeaf, func(node *scene.BvhNode, workList []bvh.BoundedVolume) {
			node.SetPrimitives(primOffset, uint32(len(workList)))

			for _, workItem := range workList {
				prim := workItem.(*input.Primitive)

				for vIndex := 0; vIndex < 3; vIndex++ {
					attribs := vertexAttribs{
						position: prim.Vertices[vIndex],
						normal:   prim.Normals[vIndex],
						uv:       prim.UVs[vIndex],
					}

					attribIndex, exists := vertexCache[attribs]
					if !exists {
						attribIndex = uint32(len(sc.optimizedScene.VertexList))
						vertexCache[attribs] = attribIndex

						sc.optimizedScene.VertexList = append(sc.optimizedScene.VertexList, prim.Vertices[vIndex])
						sc.optimizedScene.NormalList = append(sc.optimizedScene.NormalList, prim.Normals[vIndex])
						sc.optimizedScene.UvList = append(sc.optimizedScene.UvList, prim.UVs[vIndex])
					}
					sc.optimizedScene.IndexList = append(sc.optimizedScene.IndexList, attribIndex)
				}

				sc.optimizedScene.MaterialIndex = append(sc.optimizedScene.MaterialIndex, uint32(prim.MaterialIndex))
				primOffset++
			}
		}, bvh.SurfaceAreaHeuristic)

		// Apply offset to the mesh BVH nodes and append them to the
		// scene-wide node list.
		offset := int32(len(sc.optimizedScene.BvhNodeList))
		meshBvhRoots[mIndex] = uint32(offset)
		for index := range bvhNodes {
			bvhNodes[index].OffsetChildNodes(offset)
		}
		sc.optimizedScene.BvhNodeList = append(sc.optimizedScene.BvhNodeList, bvhNodes...)
	}

	sc.logger.Infof("processing %d mesh instances", len(sc.parsedScene.MeshInstances))
	sc.optimizedScene.MeshInstanceList = make([]scene.MeshInstance, len(sc.parsedScene.MeshInstances))
	for index, pmi := range sc.parsedScene.MeshInstances {
		mi := &sc.optimizedScene.MeshInstanceList[index]
		mi.MeshIndex = pmi.MeshIndex
		mi.BvhRoot = meshBvhRoots[pmi.MeshIndex]

		// Traversal transforms rays into object space instead of
		// transforming the mesh vertices into world space.
		mi.Transform = pmi.Transform
		mi.InvTransform = pmi.Transform.Inv()
	}

	sc.logger.Noticef("partitioned geometry in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
