package texture

import (
	"math"

	"github.com/rigel-pt/rigel/types"
)

// Fetch the texel closest to the given texcoord. Texcoords outside the
// [0, 1) range wrap around. Luminance formats replicate the stored value
// to all color channels; alpha is 1 unless the format stores one.
func SampleNearest(format Format, width, height uint32, data []byte, uv types.Vec2) types.Vec4 {
	x := int(frac(uv[0]) * float32(width))
	y := int(frac(uv[1]) * float32(height))
	return texelAt(format, width, height, data, x, y)
}

// Fetch a bilinearly filtered sample at the given texcoord. Texcoords
// outside the [0, 1) range wrap around.
func SampleBilinear(format Format, width, height uint32, data []byte, uv types.Vec2) types.Vec4 {
	fx := frac(uv[0])*float32(width) - 0.5
	fy := frac(uv[1])*float32(height) - 0.5

	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	s00 := texelAt(format, width, height, data, x0, y0)
	s10 := texelAt(format, width, height, data, x0+1, y0)
	s01 := texelAt(format, width, height, data, x0, y0+1)
	s11 := texelAt(format, width, height, data, x0+1, y0+1)

	top := s00.Mul(1.0 - tx).Add(s10.Mul(tx))
	bottom := s01.Mul(1.0 - tx).Add(s11.Mul(tx))
	return top.Mul(1.0 - ty).Add(bottom.Mul(ty))
}

func texelAt(format Format, width, height uint32, data []byte, x, y int) types.Vec4 {
	x = wrapIndex(x, int(width))
	y = wrapIndex(y, int(height))
	offset := (y*int(width) + x) * int(format.TexelSize())

	switch format {
	case Luminance8:
		v := float32(data[offset]) / 255.0
		return types.Vec4{v, v, v, 1.0}
	case Luminance32F:
		v := getFloat32(data, offset)
		return types.Vec4{v, v, v, 1.0}
	case Rgba8:
		return types.Vec4{
			float32(data[offset]) / 255.0,
			float32(data[offset+1]) / 255.0,
			float32(data[offset+2]) / 255.0,
			float32(data[offset+3]) / 255.0,
		}
	case Rgba32F:
		return types.Vec4{
			getFloat32(data, offset),
			getFloat32(data, offset+4),
			getFloat32(data, offset+8),
			getFloat32(data, offset+12),
		}
	}

	return types.Vec4{}
}

// Map to the fractional part of v, wrapping negative values into [0, 1).
func frac(v float32) float32 {
	return v - float32(math.Floor(float64(v)))
}

func wrapIndex(i, n int) int {
	i = i % n
	if i < 0 {
		i += n
	}
	return i
}
