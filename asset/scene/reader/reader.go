package reader

import (
	"fmt"
	"strings"

	"github.com/rigel-pt/rigel/asset"
	"github.com/rigel-pt/rigel/asset/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from file. The reader implementation is selected based on the
// file extension: .obj files are parsed and compiled while .zip files are
// expected to contain an already compiled scene.
func ReadScene(filename string) (*scene.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var reader Reader
	switch {
	case strings.HasSuffix(filename, ".obj"):
		reader = newWavefrontReader()
	case strings.HasSuffix(filename, ".zip"):
		reader = newZipSceneReader()
	default:
		return nil, fmt.Errorf("readScene: unsupported file format")
	}
	return reader.Read(res)
}
