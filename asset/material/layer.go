package material

// LayerType represents the surface layer types supported by the renderer.
type LayerType int

const (
	layerInvalid LayerType = iota
	LayerSpecular
	LayerGlossy
	LayerDiffuse
	LayerEmissive
)

// Lookup layer type by its name.
func layerTypeFromName(name string) LayerType {
	switch name {
	case "specular":
		return LayerSpecular
	case "glossy":
		return LayerGlossy
	case "diffuse":
		return LayerDiffuse
	case "emissive":
		return LayerEmissive
	}

	return layerInvalid
}

func (t LayerType) String() string {
	switch t {
	case LayerSpecular:
		return "specular"
	case LayerGlossy:
		return "glossy"
	case LayerDiffuse:
		return "diffuse"
	case LayerEmissive:
		return "emissive"
	}

	return "invalid"
}
