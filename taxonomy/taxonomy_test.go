package taxonomy

import (
	"errors"
	"testing"

	"discovery-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	cats := c.Categories()
	assert.Len(t, cats, 21)
	assert.Equal(t, "vermin", cats[0].Code)
	assert.True(t, c.HasCategory("structure"))
	assert.NoError(t, c.Validate("vermin", "rats_mice"))
	assert.NoError(t, c.Validate("structure", "mold_growth"))
}

func TestValidate(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	err = c.Validate("plumbing", "rats_mice")
	assert.True(t, errors.Is(err, ErrUnknownOption))

	err = c.Validate("lawn", "weeds")
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestValidateSelection(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	ok := models.IssueSelection{
		"vermin":    {"rats_mice", "bats"},
		"structure": {"mold_growth"},
	}
	assert.NoError(t, c.ValidateSelection(ok))

	bad := models.IssueSelection{
		"vermin":  {"rats_mice"},
		"windows": {"mold_growth"},
	}
	err = c.ValidateSelection(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOption))
	assert.Contains(t, err.Error(), "windows")
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = New([]Category{{Code: "a"}, {Code: "a"}})
	assert.Error(t, err)

	_, err = New([]Category{{Code: "a", Options: []Option{{Code: "x"}, {Code: "x"}}}})
	assert.Error(t, err)
}

func TestCategoriesReturnsCopy(t *testing.T) {
	c, err := New([]Category{{Code: "a", Options: []Option{{Code: "x"}}}})
	require.NoError(t, err)

	cats := c.Categories()
	cats[0].Code = "mutated"
	assert.True(t, c.HasCategory("a"))
	assert.Equal(t, "a", c.Categories()[0].Code)
}
