package hcl_adapter

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// argumentValues evaluates an attribute expression without variables or
// functions and renders it as statement arguments. A list or tuple yields
// one argument per element, so that repeated statements such as must or
// if-feature can be written as one attribute.
func argumentValues(expr hclsyntax.Expression) ([]string, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	ty := val.Type()
	if ty.IsListType() || ty.IsTupleType() || ty.IsSetType() {
		var out []string
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			s, err := argumentString(elem)
			if err != nil {
				return nil, append(diags, invalidArgument(expr, err))
			}
			out = append(out, s)
		}
		return out, diags
	}
	s, err := argumentString(val)
	if err != nil {
		return nil, append(diags, invalidArgument(expr, err))
	}
	return []string{s}, diags
}

// argumentString renders a primitive value the way it would be written as
// a YANG argument. Whole numbers never carry an exponent or a fraction.
func argumentString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", fmt.Errorf("null is not a valid argument")
	}
	if !val.IsKnown() {
		return "", fmt.Errorf("argument value is not known")
	}
	if val.Type() == cty.Number {
		bf := val.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int(new(big.Int))
			return i.String(), nil
		}
		return bf.Text('f', -1), nil
	}
	if !val.Type().IsPrimitiveType() {
		return "", fmt.Errorf("a %s cannot be a statement argument", val.Type().FriendlyName())
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", err
	}
	var s string
	if err := gocty.FromCtyValue(str, &s); err != nil {
		return "", err
	}
	return s, nil
}

func invalidArgument(expr hcl.Expression, err error) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid statement argument",
		Detail:   err.Error(),
		Subject:  expr.Range().Ptr(),
	}
}
