package stmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeHelpers(t *testing.T) {
	n := New("container", "top",
		New("leaf", "a", New("type", "string")),
		New("leaf", "b"),
		New("oc-ext:openconfig-version", "1.0.0"),
	)

	assert.Equal(t, "a", n.Find("leaf").Argument)
	assert.Len(t, n.FindAll("leaf"), 2)
	assert.Nil(t, n.Find("list"))

	prefix, local := n.Substatements[2].Prefix()
	assert.Equal(t, "oc-ext", prefix)
	assert.Equal(t, "openconfig-version", local)

	var seen []string
	n.Walk(func(c *Node) bool {
		seen = append(seen, c.Keyword)
		return c.Keyword != "leaf"
	})
	assert.Equal(t, []string{"container", "leaf", "leaf", "oc-ext:openconfig-version"}, seen)
	require.NoError(t, n.Validate())
}

func TestNodeValidate(t *testing.T) {
	n := Bare("module", Bare(""))
	require.Error(t, n.Validate())

	n = Bare("module", nil)
	require.Error(t, n.Validate())
}

func TestCopyHistory(t *testing.T) {
	t.Run("original is empty", func(t *testing.T) {
		assert.True(t, Original.IsEmpty())
		assert.Equal(t, CopyType(0), Original.Last())
		assert.Equal(t, "ORIGINAL", Original.String())
	})

	t.Run("append does not alias", func(t *testing.T) {
		base := Original.Append(AddedByUses)
		a := base.Append(AddedByAugmentation)
		b := base.Append(AddedByUses)

		assert.Equal(t, []CopyType{AddedByUses}, base.Ops())
		assert.Equal(t, []CopyType{AddedByUses, AddedByAugmentation}, a.Ops())
		assert.Equal(t, []CopyType{AddedByUses, AddedByUses}, b.Ops())
		assert.True(t, a.Contains(AddedByAugmentation))
		assert.False(t, b.Contains(AddedByAugmentation))
		assert.Equal(t, AddedByAugmentation, a.Last())
		assert.False(t, a.Equal(b))
		assert.Equal(t, "ADDED_BY_USES,ADDED_BY_AUGMENTATION", a.String())
	})
}
