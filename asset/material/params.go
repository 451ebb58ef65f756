package material

import "github.com/rigel-pt/rigel/types"

const (
	ParamTint       = "tint"
	ParamTexture    = "texture"
	ParamIOR        = "ior"
	ParamExtinction = "extinction"
	ParamRoughness  = "roughness"
	ParamRadiance   = "radiance"
	ParamScale      = "scale"
)

var (
	layerAllowedParameters = map[LayerType]map[string]struct{}{
		LayerSpecular: {
			ParamTint:       struct{}{},
			ParamTexture:    struct{}{},
			ParamIOR:        struct{}{},
			ParamExtinction: struct{}{},
		},
		LayerGlossy: {
			ParamTint:       struct{}{},
			ParamTexture:    struct{}{},
			ParamIOR:        struct{}{},
			ParamExtinction: struct{}{},
			ParamRoughness:  struct{}{},
		},
		LayerDiffuse: {
			ParamTint:    struct{}{},
			ParamTexture: struct{}{},
		},
		LayerEmissive: {
			ParamRadiance: struct{}{},
			ParamScale:    struct{}{},
		},
	}
)

var (
	DefaultTint                  = types.Vec3{1.0, 1.0, 1.0}
	DefaultRoughness             = types.Vec2{0.1, 0.1}
	DefaultExtinction            = types.Vec3{}
	DefaultRadiance              = types.Vec3{1.0, 1.0, 1.0}
	DefaultRadianceScale float32 = 1.0
	DefaultIntIOR                = KnownIORs["glass"]
	DefaultExtIOR                = KnownIORs["air"]
)
