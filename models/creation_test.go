package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccent(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.True(t, AccentCola.Valid())
		assert.True(t, AccentEnergy.Valid())
		assert.True(t, AccentEistee.Valid())
		assert.False(t, Accent("none").Valid())
		assert.False(t, Accent("").Valid())
	})

	t.Run("ScanAndValue", func(t *testing.T) {
		var a Accent
		require.NoError(t, a.Scan("cola"))
		assert.Equal(t, AccentCola, a)

		require.NoError(t, a.Scan([]byte("eistee")))
		assert.Equal(t, AccentEistee, a)

		require.NoError(t, a.Scan(nil))
		assert.Equal(t, Accent(""), a)

		assert.Error(t, a.Scan(42))

		v, err := AccentEnergy.Value()
		require.NoError(t, err)
		assert.Equal(t, "energy", v)

		_, err = Accent("bogus").Value()
		assert.Error(t, err)
	})
}

func TestVariant(t *testing.T) {
	assert.True(t, VariantOriginal.Valid())
	assert.True(t, VariantLight.Valid())
	assert.False(t, Variant("diet").Valid())

	var v Variant
	require.NoError(t, v.Scan("light"))
	assert.Equal(t, VariantLight, v)

	_, err := Variant("diet").Value()
	assert.Error(t, err)
}

func TestBaseType(t *testing.T) {
	assert.True(t, BaseTypeNormal.Valid())
	assert.True(t, BaseTypeEistee.Valid())
	assert.False(t, BaseType("sparkling").Valid())
}

func TestCreationAccessors(t *testing.T) {
	t.Run("AccentID", func(t *testing.T) {
		c := &Creation{}
		assert.Equal(t, "none", c.AccentID())

		accent := AccentCola
		c.Accent = &accent
		assert.Equal(t, "cola", c.AccentID())
	})

	t.Run("DominantFlavor", func(t *testing.T) {
		c := &Creation{}
		assert.Equal(t, "", c.DominantFlavor())

		c.PrimaryFlavors = []string{"mango", "kokos"}
		assert.Equal(t, "mango", c.DominantFlavor())
	})
}

func TestVoterIdentity(t *testing.T) {
	t.Run("NormalizesEmail", func(t *testing.T) {
		id, err := NewVoterIdentity("  Fan@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, "fan@example.com", id.Email())
		assert.False(t, id.IsZero())
	})

	t.Run("RejectsInvalid", func(t *testing.T) {
		_, err := NewVoterIdentity("")
		assert.Error(t, err)

		_, err = NewVoterIdentity("not-an-email")
		assert.Error(t, err)
	})

	t.Run("MatchesCaseInsensitive", func(t *testing.T) {
		id, err := NewVoterIdentity("fan@example.com")
		require.NoError(t, err)
		assert.True(t, id.Matches("FAN@example.com"))
		assert.False(t, id.Matches("other@example.com"))
	})

	t.Run("ZeroValue", func(t *testing.T) {
		var id VoterIdentity
		assert.True(t, id.IsZero())
	})
}
