package material

import (
	"errors"
	"fmt"
)

// Material descriptions are expressions that combine surface layers with
// blend operators. Expressions are parsed into a node tree which is
// semantically validated and later resolved by the scene compiler into the
// flat material records consumed by the shading pipeline.
type ExprNode interface {
	Validate() error
}

type Vec2Node [2]float32

type Vec3Node [3]float32

type FloatNode float32

type IORNameNode string

type TextureNode string

type LayerParamNode struct {
	Name  string
	Value ExprNode
}

type LayerParamList []LayerParamNode

type LayerNode struct {
	Type       LayerType
	Parameters LayerParamList
}

type BlendNode struct {
	Expressions [2]ExprNode

	// Contribution of the second expression; the first is weighted
	// with 1 - Weight.
	Weight float32
}

func (n Vec2Node) Validate() error {
	return nil
}

func (n Vec3Node) Validate() error {
	return nil
}

func (n FloatNode) Validate() error {
	return nil
}

func (n IORNameNode) Validate() error {
	if n == "" {
		return errors.New("IOR material name cannot be empty")
	}
	_, err := IOR(string(n))
	return err
}

func (n TextureNode) Validate() error {
	if n == "" {
		return errors.New("no texture path specified")
	}
	return nil
}

func (n LayerParamNode) Validate() error {
	switch n.Name {
	case ParamTint:
		// Ensure energy conservation
		if v, isVec := n.Value.(Vec3Node); isVec && (v[0] > 1.0 || v[1] > 1.0 || v[2] > 1.0) {
			return fmt.Errorf("energy conservation violation for parameter %q; ensure that all vector components are <= 1.0", n.Name)
		}
	case ParamRoughness:
		if v, isFloat := n.Value.(FloatNode); isFloat && (v < 0.0 || v > 1.0) {
			return fmt.Errorf("values for parameter %q must be in the [0, 1] range", n.Name)
		}
		if v, isVec := n.Value.(Vec2Node); isVec && (v[0] < 0.0 || v[0] > 1.0 || v[1] < 0.0 || v[1] > 1.0) {
			return fmt.Errorf("values for parameter %q must be in the [0, 1] range", n.Name)
		}
	case ParamExtinction:
		if v, isVec := n.Value.(Vec3Node); isVec && (v[0] < 0.0 || v[1] < 0.0 || v[2] < 0.0) {
			return fmt.Errorf("values for parameter %q cannot be negative", n.Name)
		}
	case ParamIOR:
		if v, isFloat := n.Value.(FloatNode); isFloat && v <= 0.0 {
			return fmt.Errorf("values for parameter %q must be positive", n.Name)
		}
		if v, isVec := n.Value.(Vec3Node); isVec && (v[0] <= 0.0 || v[1] <= 0.0 || v[2] <= 0.0) {
			return fmt.Errorf("values for parameter %q must be positive", n.Name)
		}
	case ParamRadiance:
		if v, isVec := n.Value.(Vec3Node); isVec && (v[0] < 0.0 || v[1] < 0.0 || v[2] < 0.0) {
			return fmt.Errorf("values for parameter %q cannot be negative", n.Name)
		}
	case ParamScale:
		if v, isFloat := n.Value.(FloatNode); isFloat && v < 0.0 {
			return fmt.Errorf("values for parameter %q cannot be negative", n.Name)
		}
	}

	return n.Value.Validate()
}

func (n LayerParamList) Validate() error {
	return nil
}

func (n LayerNode) Validate() error {
	if n.Type == layerInvalid {
		return fmt.Errorf("invalid layer type")
	}

	// Validate list of allowed parameter names
	var err error
	for _, param := range n.Parameters {
		if _, isAllowed := layerAllowedParameters[n.Type][param.Name]; !isAllowed {
			return fmt.Errorf("layer type %q does not support parameter %q", n.Type, param.Name)
		}

		if err = param.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (n BlendNode) Validate() error {
	var err error
	for argIndex, arg := range n.Expressions {
		if arg == nil {
			return fmt.Errorf("missing expression argument %d for %q", argIndex, "blend")
		}
		err = arg.Validate()
		if err != nil {
			return fmt.Errorf("blend argument %d: %v", argIndex, err)
		}
	}

	if n.Weight < 0 || n.Weight > 1.0 {
		return fmt.Errorf("blend weight: value must be in the [0, 1] range")
	}

	return nil
}
