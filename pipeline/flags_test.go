package pipeline

import (
	"testing"

	"discovery-backend/models"
	"discovery-backend/profiles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstPair(t *testing.T, c *models.Case) models.PartyPairDataset {
	t.Helper()
	pairs, err := EnumeratePairs(c, HouseholdIgnore)
	require.NoError(t, err)
	return pairs[0]
}

func TestDeriveFlagsLosAngelesAdmissions(t *testing.T) {
	pair := firstPair(t, losAngelesCase())

	flags, err := DeriveFlags(pair, mustProfile(t, models.ProfileAdmissions))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"AdmissionsGeneral", "HasLosAngeles", "HasMold", "HasRatsMice",
		"HasStructure", "HasVermin", "IsOwner",
	}, flags.Names())
}

func TestDeriveFlagsRoles(t *testing.T) {
	c := losAngelesCase()
	c.Defendants[0].IsManager = true
	pair := firstPair(t, c)

	srogs, err := DeriveFlags(pair, mustProfile(t, models.ProfileSROGs))
	require.NoError(t, err)
	assert.True(t, srogs.Has(profiles.FlagIsOwner))
	assert.True(t, srogs.Has(profiles.FlagIsManager))
	assert.False(t, srogs.Has(profiles.FlagIsOwnerManager))

	pods, err := DeriveFlags(pair, mustProfile(t, models.ProfilePODs))
	require.NoError(t, err)
	assert.True(t, pods.Has(profiles.FlagIsOwnerManager))
	assert.False(t, pods.Has(profiles.FlagIsOwner))
	assert.False(t, pods.Has(profiles.FlagIsManager))

	c.Defendants[0] = defendant("Pat", "Kim", false, false)
	none, err := DeriveFlags(firstPair(t, c), mustProfile(t, models.ProfilePODs))
	require.NoError(t, err)
	assert.False(t, none.Has(profiles.FlagIsOwnerManager))
}

func TestDeriveFlagsGeneralAndGeography(t *testing.T) {
	c := losAngelesCase()
	c.Plaintiffs[0].Issues = models.IssueSelection{}
	c.City = "Pasadena"
	pair := firstPair(t, c)

	for _, typ := range models.ProfileTypes {
		flags, err := DeriveFlags(pair, mustProfile(t, typ))
		require.NoError(t, err)
		assert.False(t, flags.Has(profiles.FlagSROGsGeneral), typ)
		assert.False(t, flags.Has(profiles.FlagAdmissionsGeneral), typ)
		for _, city := range profiles.GeographyCities {
			assert.False(t, flags.Has(city.Flag), typ)
		}
	}

	c.City = "San Diego"
	c.Plaintiffs[0].Issues = models.IssueSelection{"insects": {"roaches"}}
	pair = firstPair(t, c)

	adm, err := DeriveFlags(pair, mustProfile(t, models.ProfileAdmissions))
	require.NoError(t, err)
	assert.True(t, adm.Has("HasSanDiego"))
	assert.False(t, adm.Has("HasLosAngeles"))

	srogs, err := DeriveFlags(pair, mustProfile(t, models.ProfileSROGs))
	require.NoError(t, err)
	assert.True(t, srogs.Has(profiles.FlagSROGsGeneral))
	assert.False(t, srogs.Has("HasSanDiego"))

	pods, err := DeriveFlags(pair, mustProfile(t, models.ProfilePODs))
	require.NoError(t, err)
	assert.Equal(t, []string{"HasInsects", "HasRoaches", "IsOwnerManager"}, pods.Names())
}

func TestDeriveFlagsCollapsedCategory(t *testing.T) {
	c := losAngelesCase()
	c.Plaintiffs[0].Issues = models.IssueSelection{"harassment": {"eviction_threats"}}
	pair := firstPair(t, c)

	pods, err := DeriveFlags(pair, mustProfile(t, models.ProfilePODs))
	require.NoError(t, err)
	assert.Equal(t, []string{"HasHarassment", "IsOwnerManager"}, pods.Names())

	srogs, err := DeriveFlags(pair, mustProfile(t, models.ProfileSROGs))
	require.NoError(t, err)
	assert.True(t, srogs.Has("HasEvictionThreats"))
	assert.True(t, srogs.Has("HasHarassment"))
}

func TestDeriveFlagsOverride(t *testing.T) {
	c := losAngelesCase()
	c.Plaintiffs[0].Issues = models.IssueSelection{"common_areas": {"vermin"}}
	pair := firstPair(t, c)

	adm, err := DeriveFlags(pair, mustProfile(t, models.ProfileAdmissions))
	require.NoError(t, err)
	assert.True(t, adm.Has("HasCommonAreaVermin"))
	assert.True(t, adm.Has("HasVermin"))
	assert.True(t, adm.Has("HasCommonAreas"))

	srogs, err := DeriveFlags(pair, mustProfile(t, models.ProfileSROGs))
	require.NoError(t, err)
	assert.False(t, srogs.Has("HasVermin"))
}

const unmappedRules = `
categories:
  - code: vermin
    flag: HasVermin
    options:
      rats_mice: [HasRatsMice]
`

const unmappedSROGs = `
type: srogs
template: SROGsMaster.docx
filename_suffix: Discovery Propounded SROGS
general_flag: SROGsGeneral
flags:
  - {name: SROGsGeneral, count: 56, first_set_only: true}
  - {name: IsOwner, count: 22, first_set_only: true}
  - {name: IsManager, count: 20, first_set_only: true}
  - {name: HasVermin, count: 9}
`

func TestDeriveFlagsUnmappedFlag(t *testing.T) {
	r, err := profiles.Parse([]byte(unmappedRules), []byte(unmappedSROGs))
	require.NoError(t, err)
	p, err := r.Get(models.ProfileSROGs)
	require.NoError(t, err)

	flags, err := DeriveFlags(firstPair(t, losAngelesCase()), p)
	assert.Nil(t, flags)
	require.ErrorIs(t, err, ErrUnmappedFlag)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "HasRatsMice", ce.Flag)
	assert.Equal(t, models.ProfileSROGs, ce.Profile)
	assert.False(t, IsValidation(err))
}

func TestDeriveFlagsNoRule(t *testing.T) {
	r, err := profiles.Parse([]byte(unmappedRules), []byte(unmappedSROGs))
	require.NoError(t, err)
	p, err := r.Get(models.ProfileSROGs)
	require.NoError(t, err)

	c := losAngelesCase()
	c.Plaintiffs[0].Issues = models.IssueSelection{"insects": {"ants"}}
	_, err = DeriveFlags(firstPair(t, c), p)
	assert.ErrorIs(t, err, ErrNoRule)
}

func TestTransform(t *testing.T) {
	pair := firstPair(t, losAngelesCase())
	p := mustProfile(t, models.ProfileAdmissions)
	flags, err := DeriveFlags(pair, p)
	require.NoError(t, err)

	ds, err := Transform(pair, flags, p)
	require.NoError(t, err)
	assert.Equal(t, "AdmissionsMaster.docx", ds.Template)
	assert.Equal(t, "Discovery Request for Admissions", ds.FilenameSuffix)
	assert.Equal(t, 23+12+3+5+4+8+3, ds.Total)
	assert.Equal(t, map[string]int{
		"AdmissionsGeneral": 23, "IsOwner": 12, "HasVermin": 3, "HasRatsMice": 5,
		"HasStructure": 4, "HasMold": 8, "HasLosAngeles": 3,
	}, ds.FlagCounts())

	for i := 1; i < len(ds.Flags); i++ {
		assert.Less(t, ds.Flags[i-1].Position, ds.Flags[i].Position)
	}
	assert.Equal(t, "AdmissionsGeneral", ds.Flags[0].Name)
	assert.Equal(t, "HasLosAngeles", ds.Flags[len(ds.Flags)-1].Name)

	_, err = Transform(pair, models.FlagMap{"HasUnicorns": true}, p)
	assert.ErrorIs(t, err, ErrUnmappedFlag)
}
