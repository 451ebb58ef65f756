package texture

type Format uint32

const (
	Luminance8 Format = iota
	Luminance32F
	Rgba8
	Rgba32F
)

// Get the texel size in bytes for this format.
func (f Format) TexelSize() uint32 {
	switch f {
	case Luminance8:
		return 1
	case Luminance32F:
		return 4
	case Rgba8:
		return 4
	case Rgba32F:
		return 16
	}
	return 0
}

func (f Format) String() string {
	switch f {
	case Luminance8:
		return "luminance8"
	case Luminance32F:
		return "luminance32f"
	case Rgba8:
		return "rgba8"
	case Rgba32F:
		return "rgba32f"
	}
	return "unknown"
}
