package material

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokFloat
	tokString
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokComma
	tokColon
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type scanner struct {
	input string
	pos   int
}

func isIdentRune(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

func isNumberRune(c byte) bool {
	return strings.IndexByte("0123456789.eE+-", c) != -1
}

func (s *scanner) next() (token, error) {
	for s.pos < len(s.input) && (s.input[s.pos] == ' ' || s.input[s.pos] == '\t' || s.input[s.pos] == '\n' || s.input[s.pos] == '\r') {
		s.pos++
	}
	if s.pos >= len(s.input) {
		return token{kind: tokEOF, pos: s.pos}, nil
	}

	start := s.pos
	c := s.input[s.pos]
	switch {
	case c == '(':
		s.pos++
		return token{tokLParen, "(", start}, nil
	case c == ')':
		s.pos++
		return token{tokRParen, ")", start}, nil
	case c == '{':
		s.pos++
		return token{tokLBrace, "{", start}, nil
	case c == '}':
		s.pos++
		return token{tokRBrace, "}", start}, nil
	case c == ',':
		s.pos++
		return token{tokComma, ",", start}, nil
	case c == ':':
		s.pos++
		return token{tokColon, ":", start}, nil
	case c == '"':
		s.pos++
		for s.pos < len(s.input) && s.input[s.pos] != '"' {
			s.pos++
		}
		if s.pos >= len(s.input) {
			return token{}, fmt.Errorf("unterminated string at character %d", start)
		}
		text := s.input[start+1 : s.pos]
		s.pos++
		return token{tokString, text, start}, nil
	case c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+':
		for s.pos < len(s.input) && isNumberRune(s.input[s.pos]) {
			s.pos++
		}
		return token{tokFloat, s.input[start:s.pos], start}, nil
	case isIdentRune(c):
		for s.pos < len(s.input) && isIdentRune(s.input[s.pos]) {
			s.pos++
		}
		return token{tokIdent, s.input[start:s.pos], start}, nil
	}

	return token{}, fmt.Errorf("unexpected character %q at character %d", string(c), start)
}

type parser struct {
	scan *scanner
	cur  token
}

// Parse a material description expression into a node tree. The tree is not
// semantically validated; callers should invoke Validate on the returned node.
//
// An expression is either a surface layer with an optional parameter list,
// e.g. specular(tint: {0.9, 0.9, 0.9}, ior: "glass"), or a blend of two
// sub-expressions with a weight for the second one, e.g.
// blend(diffuse(), specular(), 0.2).
func ParseExpression(expr string) (ExprNode, error) {
	p := &parser{scan: &scanner{input: expr}}
	if err := p.advance(); err != nil {
		return nil, err
	}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, p.errUnexpected("end of expression")
	}
	return node, nil
}

func (p *parser) advance() error {
	tok, err := p.scan.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.cur.kind != kind {
		return token{}, p.errUnexpected(what)
	}
	tok := p.cur
	return tok, p.advance()
}

func (p *parser) errUnexpected(what string) error {
	if p.cur.kind == tokEOF {
		return fmt.Errorf("expected %s; reached end of expression", what)
	}
	return fmt.Errorf("expected %s; got %q at character %d", what, p.cur.text, p.cur.pos)
}

func (p *parser) parseExpr() (ExprNode, error) {
	head, err := p.expect(tokIdent, "layer or operator name")
	if err != nil {
		return nil, err
	}

	if head.text == "blend" {
		return p.parseBlend()
	}

	layerType := layerTypeFromName(head.text)
	if layerType == layerInvalid {
		return nil, fmt.Errorf("unknown layer type %q at character %d", head.text, head.pos)
	}

	if _, err = p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}

	node := LayerNode{Type: layerType}
	for p.cur.kind != tokRParen {
		if len(node.Parameters) > 0 {
			if _, err = p.expect(tokComma, `","`); err != nil {
				return nil, err
			}
		}

		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		node.Parameters = append(node.Parameters, param)
	}

	return node, p.advance()
}

func (p *parser) parseBlend() (ExprNode, error) {
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}

	var node BlendNode
	var err error
	for argIndex := 0; argIndex < 2; argIndex++ {
		if node.Expressions[argIndex], err = p.parseExpr(); err != nil {
			return nil, err
		}
		if _, err = p.expect(tokComma, `","`); err != nil {
			return nil, err
		}
	}

	weightTok, err := p.expect(tokFloat, "blend weight")
	if err != nil {
		return nil, err
	}
	weight, err := strconv.ParseFloat(weightTok.text, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric value %q at character %d", weightTok.text, weightTok.pos)
	}
	node.Weight = float32(weight)

	if _, err = p.expect(tokRParen, `")"`); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) parseParam() (LayerParamNode, error) {
	name, err := p.expect(tokIdent, "parameter name")
	if err != nil {
		return LayerParamNode{}, err
	}
	if _, err = p.expect(tokColon, `":"`); err != nil {
		return LayerParamNode{}, err
	}

	value, err := p.parseValue(name.text)
	if err != nil {
		return LayerParamNode{}, err
	}
	return LayerParamNode{Name: name.text, Value: value}, nil
}

func (p *parser) parseValue(paramName string) (ExprNode, error) {
	switch p.cur.kind {
	case tokFloat:
		v, err := strconv.ParseFloat(p.cur.text, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric value %q at character %d", p.cur.text, p.cur.pos)
		}
		return FloatNode(v), p.advance()
	case tokString:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		// Strings assigned to the ior parameter refer to entries in the
		// known IOR table; everywhere else they are texture paths.
		if paramName == ParamIOR {
			return IORNameNode(text), nil
		}
		return TextureNode(text), nil
	case tokLBrace:
		return p.parseVector()
	}

	return nil, p.errUnexpected("parameter value")
}

func (p *parser) parseVector() (ExprNode, error) {
	open, err := p.expect(tokLBrace, `"{"`)
	if err != nil {
		return nil, err
	}

	comps := make([]float32, 0, 3)
	for p.cur.kind != tokRBrace {
		if len(comps) > 0 {
			if _, err = p.expect(tokComma, `","`); err != nil {
				return nil, err
			}
		}

		tok, err := p.expect(tokFloat, "numeric vector component")
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(tok.text, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric value %q at character %d", tok.text, tok.pos)
		}
		comps = append(comps, float32(v))
	}
	if err = p.advance(); err != nil {
		return nil, err
	}

	switch len(comps) {
	case 2:
		return Vec2Node{comps[0], comps[1]}, nil
	case 3:
		return Vec3Node{comps[0], comps[1], comps[2]}, nil
	}
	return nil, fmt.Errorf("vector at character %d must specify 2 or 3 components", open.pos)
}
