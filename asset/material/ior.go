package material

import (
	"fmt"
	"strings"

	"github.com/rigel-pt/rigel/types"
)

// Indices of refraction for a set of common media, sampled per color
// channel at the nominal R/G/B wavelengths (650, 510 and 475 nm) so that
// dispersive materials can be described by name.
var KnownIORs = map[string]types.Vec3{
	"air":      {1.00028, 1.00028, 1.00028},
	"water":    {1.3308, 1.3330, 1.3374},
	"glass":    {1.5143, 1.5168, 1.5214},
	"quartz":   {1.4561, 1.4585, 1.4631},
	"sapphire": {1.7635, 1.7704, 1.7767},
	"diamond":  {2.4100, 2.4237, 2.4392},
	"gold":     {0.1870, 0.4242, 1.3319},
	"silver":   {0.1552, 0.1376, 0.1356},
	"copper":   {0.2129, 0.9192, 1.1438},
}

// Lookup the per-channel index of refraction for a known material name.
// The lookup is case-insensitive.
func IOR(name string) (types.Vec3, error) {
	ior, exists := KnownIORs[strings.ToLower(name)]
	if !exists {
		return types.Vec3{}, fmt.Errorf("unknown IOR material name %q", name)
	}
	return ior, nil
}
