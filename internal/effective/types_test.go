// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package effective

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestValueOf(t *testing.T) {
	testCases := []struct {
		name    string
		builtin string
		raw     string
		want    cty.Value
		wantErr string
	}{
		{name: "string", builtin: "string", raw: "hello", want: cty.StringVal("hello")},
		{name: "uint8 in range", builtin: "uint8", raw: "255", want: cty.NumberIntVal(255)},
		{name: "uint8 overflow", builtin: "uint8", raw: "300", wantErr: `"300" is not a valid uint8`},
		{name: "int8 negative", builtin: "int8", raw: "-128", want: cty.NumberIntVal(-128)},
		{name: "uint32 negative", builtin: "uint32", raw: "-1", wantErr: "not a valid uint32"},
		{name: "boolean", builtin: "boolean", raw: "true", want: cty.True},
		{name: "boolean garbage", builtin: "boolean", raw: "maybe", wantErr: "not a valid boolean"},
		{name: "bits", builtin: "bits", raw: " read  write ", want: cty.SetVal([]cty.Value{cty.StringVal("read"), cty.StringVal("write")})},
		{name: "no bits", builtin: "bits", raw: "", want: cty.SetValEmpty(cty.String)},
		{name: "empty", builtin: "empty", raw: "", wantErr: "cannot have a value"},
		{name: "union kept raw", builtin: "union", raw: "42", want: cty.StringVal("42")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValueOf(tc.builtin, tc.raw)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.RawEquals(got), "got %#v", got)
		})
	}
}

func TestBuiltinTypes(t *testing.T) {
	assert.True(t, IsBuiltinType("decimal64"))
	assert.False(t, IsBuiltinType("percent"))
	assert.Equal(t, cty.Number, CtyTypeOf("int64"))
	assert.Equal(t, cty.Bool, CtyTypeOf("boolean"))
	assert.Equal(t, cty.DynamicPseudoType, CtyTypeOf("percent"))
}

func TestSchemaPath(t *testing.T) {
	a := qname.New("urn:a", "", "top")
	b := qname.New("urn:b", "2024-01-01", "inner")

	p := SchemaPath{a}.Append(b)
	assert.Equal(t, "/top/inner", p.LocalString())
	assert.Equal(t, "/(urn:a)top/(urn:b?revision=2024-01-01)inner", p.String())
	assert.Equal(t, b, p.Last())
	assert.True(t, p.Parent().Equal(SchemaPath{a}))
	assert.Nil(t, SchemaPath{}.Parent())
	assert.True(t, SchemaPath{}.Last().IsZero())

	// Append never aliases the receiver.
	base := make(SchemaPath, 1, 4)
	base[0] = a
	x := base.Append(qname.New("urn:a", "", "x"))
	y := base.Append(qname.New("urn:a", "", "y"))
	if diff := cmp.Diff("x", x.Last().Local); diff != "" {
		t.Errorf("first append mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "y", y.Last().Local)
}
