package texture

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/rigel-pt/rigel/asset"

	// Register the decoders that New can stream textures through.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// A texture image and its metadata.
type Texture struct {
	Format Format

	Width  uint32
	Height uint32

	Data []byte
}

// Create a new texture from a Resource. The image payload is decoded by the
// image decoder matching its signature and converted to one of the
// supported texel formats. 8-bit grayscale images map to Luminance8, 16-bit
// grayscale to Luminance32F, 16-bit color to Rgba32F and everything else to
// Rgba8.
func New(res *asset.Resource) (*Texture, error) {
	img, _, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %s", res.Path(), err)
	}

	return fromImage(img), nil
}

func fromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	tex := &Texture{
		Width:  uint32(width),
		Height: uint32(height),
	}

	switch t := img.(type) {
	case *image.Gray:
		tex.Format = Luminance8
		tex.Data = make([]byte, width*height)
		for y := 0; y < height; y++ {
			copy(tex.Data[y*width:], t.Pix[y*t.Stride:y*t.Stride+width])
		}
	case *image.Gray16:
		tex.Format = Luminance32F
		tex.Data = make([]byte, width*height*4)
		offset := 0
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				lum, _, _, _ := t.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				putFloat32(tex.Data, offset, float32(lum)/65535.0)
				offset += 4
			}
		}
	case *image.RGBA:
		tex.Format = Rgba8
		tex.Data = make([]byte, width*height*4)
		for y := 0; y < height; y++ {
			copy(tex.Data[y*width*4:], t.Pix[y*t.Stride:y*t.Stride+width*4])
		}
	case *image.NRGBA:
		tex.Format = Rgba8
		tex.Data = make([]byte, width*height*4)
		for y := 0; y < height; y++ {
			copy(tex.Data[y*width*4:], t.Pix[y*t.Stride:y*t.Stride+width*4])
		}
	case *image.RGBA64, *image.NRGBA64:
		tex.Format = Rgba32F
		tex.Data = make([]byte, width*height*16)
		offset := 0
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				putFloat32(tex.Data, offset, float32(r)/65535.0)
				putFloat32(tex.Data, offset+4, float32(g)/65535.0)
				putFloat32(tex.Data, offset+8, float32(b)/65535.0)
				putFloat32(tex.Data, offset+12, float32(a)/65535.0)
				offset += 16
			}
		}
	default:
		tex.Format = Rgba8
		tex.Data = make([]byte, width*height*4)
		offset := 0
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				tex.Data[offset] = byte(r >> 8)
				tex.Data[offset+1] = byte(g >> 8)
				tex.Data[offset+2] = byte(b >> 8)
				tex.Data[offset+3] = byte(a >> 8)
				offset += 4
			}
		}
	}

	return tex
}

func putFloat32(data []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(data[offset:], math.Float32bits(v))
}

func getFloat32(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}
