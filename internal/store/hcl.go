package store

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// hclAssetBlock is the top-level block carrying the runtime type as its label:
//
//	asset "Material" {
//	  texture = "/Game/T_Wood"
//	}
const hclAssetBlock = "asset"

// decodeHCL converts an HCL document into the generic tree the walker reads.
// Blocks become nested objects; repeated blocks of one type become a list.
func decodeHCL(name string, data []byte) (map[string]any, error) {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected body type %T", file.Body)
	}

	if len(body.Attributes) == 0 && len(body.Blocks) == 1 && body.Blocks[0].Type == hclAssetBlock {
		block := body.Blocks[0]
		if len(block.Labels) != 1 {
			return nil, fmt.Errorf("%s block wants exactly one label, got %d", hclAssetBlock, len(block.Labels))
		}
		doc, err := hclBody(block.Body)
		if err != nil {
			return nil, err
		}
		doc["$type"] = block.Labels[0]
		return doc, nil
	}
	return hclBody(body)
}

func hclBody(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		out[name] = ctyToGo(v)
	}

	counts := make(map[string]int)
	for _, b := range body.Blocks {
		counts[b.Type]++
	}
	for _, b := range body.Blocks {
		nested, err := hclBody(b.Body)
		if err != nil {
			return nil, err
		}
		if len(b.Labels) > 0 {
			nested["$type"] = b.Labels[0]
		}
		if counts[b.Type] > 1 {
			list, _ := out[b.Type].([]any)
			out[b.Type] = append(list, nested)
		} else {
			out[b.Type] = nested
		}
	}
	return out, nil
}

func ctyToGo(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	t := v.Type()
	switch {
	case t.Equals(cty.String):
		return v.AsString()
	case t.Equals(cty.Bool):
		return v.True()
	case t.Equals(cty.Number):
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i
			}
		}
		f, _ := bf.Float64()
		return f
	case t.IsObjectType() || t.IsMapType():
		m := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			m[k.AsString()] = ctyToGo(e)
		}
		return m
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		var list []any
		for it := v.ElementIterator(); it.Next(); {
			_, e := it.Element()
			list = append(list, ctyToGo(e))
		}
		return list
	default:
		return nil
	}
}
