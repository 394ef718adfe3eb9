package profiles

import (
	"testing"

	"discovery-backend/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	r, err := Load()
	require.NoError(t, err)

	all := r.All()
	require.Len(t, all, 3)
	got := []models.ProfileType{all[0].Type(), all[1].Type(), all[2].Type()}
	if diff := cmp.Diff(models.ProfileTypes, got); diff != "" {
		t.Errorf("All() order mismatch:\n%s", diff)
	}
	assert.Len(t, r.Vocabulary(), 194)
}

func TestEmbeddedProfilesHaveNoUnmappedFlags(t *testing.T) {
	r := MustLoad()
	for _, p := range r.All() {
		t.Run(string(p.Type()), func(t *testing.T) {
			assert.Empty(t, Audit(p))
			for _, e := range p.Counts().Entries() {
				assert.True(t, r.InVocabulary(e.Name), e.Name)
				assert.Positive(t, e.Count, e.Name)
			}
		})
	}
}

func TestProfileSemantics(t *testing.T) {
	r := MustLoad()
	srogs, err := r.Get(models.ProfileSROGs)
	require.NoError(t, err)
	pods, err := r.Get(models.ProfilePODs)
	require.NoError(t, err)
	adm, err := r.Get(models.ProfileAdmissions)
	require.NoError(t, err)

	assert.Equal(t, FlagSROGsGeneral, srogs.GeneralFlag())
	assert.Equal(t, "", pods.GeneralFlag())
	assert.Equal(t, FlagAdmissionsGeneral, adm.GeneralFlag())

	both := models.Defendant{IsOwner: true, IsManager: true}
	assert.Equal(t, []string{FlagIsOwner, FlagIsManager}, srogs.RoleFlags(both))
	assert.Equal(t, []string{FlagIsOwnerManager}, pods.RoleFlags(both))
	assert.Equal(t, []string{FlagIsOwner, FlagIsManager}, adm.RoleFlags(both))
	assert.Equal(t, []string{FlagIsOwnerManager}, pods.RoleFlags(models.Defendant{IsManager: true}))
	assert.Nil(t, pods.RoleFlags(models.Defendant{}))

	assert.Equal(t, "HasLosAngeles", adm.GeographyFlag("Los Angeles"))
	assert.Equal(t, "HasOakland", adm.GeographyFlag(" Oakland "))
	assert.Equal(t, "", adm.GeographyFlag("los angeles"))
	assert.Equal(t, "", adm.GeographyFlag("Pasadena"))
	assert.Equal(t, "", srogs.GeographyFlag("Los Angeles"))

	_, _, ok := pods.Counts().Lookup(FlagIsOwner)
	assert.False(t, ok)
	_, _, ok = srogs.Counts().Lookup(FlagIsOwnerManager)
	assert.False(t, ok)
}

func TestFirstSetOnly(t *testing.T) {
	r := MustLoad()
	srogs, _ := r.Get(models.ProfileSROGs)
	pods, _ := r.Get(models.ProfilePODs)
	adm, _ := r.Get(models.ProfileAdmissions)

	assert.Equal(t, []string{"SROGsGeneral", "IsOwner", "IsManager"}, srogs.FirstSetOnly())
	assert.Equal(t, []string{"IsOwnerManager"}, pods.FirstSetOnly())
	assert.Equal(t, []string{"AdmissionsGeneral", "IsOwner", "IsManager"}, adm.FirstSetOnly())
}

func TestRuleLookup(t *testing.T) {
	r := MustLoad()
	srogs, _ := r.Get(models.ProfileSROGs)
	pods, _ := r.Get(models.ProfilePODs)
	adm, _ := r.Get(models.ProfileAdmissions)

	flags, ok := srogs.Rules().Lookup("vermin", "rats_mice")
	require.True(t, ok)
	assert.Equal(t, []string{"HasRatsMice", "HasVermin"}, flags)

	flags, ok = srogs.Rules().Lookup("structure", "mold_growth")
	require.True(t, ok)
	assert.Equal(t, []string{"HasMold", "HasStructure"}, flags)

	// collapsed category
	flags, ok = pods.Rules().Lookup("harassment", "written_threats")
	require.True(t, ok)
	assert.Equal(t, []string{"HasHarassment"}, flags)

	// override keeps the category flag
	flags, ok = adm.Rules().Lookup("common_areas", "vermin")
	require.True(t, ok)
	assert.Equal(t, []string{"HasCommonAreaVermin", "HasVermin", "HasCommonAreas"}, flags)

	_, ok = srogs.Rules().Lookup("vermin", "dragons")
	assert.False(t, ok)
}

func TestCountTableOrder(t *testing.T) {
	r := MustLoad()
	srogs, _ := r.Get(models.ProfileSROGs)

	e, pos, ok := srogs.Counts().Lookup("SROGsGeneral")
	require.True(t, ok)
	assert.Equal(t, 0, pos)
	assert.Equal(t, 56, e.Count)
	assert.True(t, e.FirstSetOnly)

	_, vermin, _ := srogs.Counts().Lookup("HasVermin")
	_, rats, _ := srogs.Counts().Lookup("HasRatsMice")
	assert.Less(t, vermin, rats)
}

const testRules = `
categories:
  - code: vermin
    flag: HasVermin
    options:
      rats_mice: [HasRatsMice]
`

func TestParseRejectsBadDefinitions(t *testing.T) {
	cases := map[string]string{
		"zero count": `
type: srogs
template: t.docx
filename_suffix: s
flags:
  - {name: HasVermin, count: 0}
`,
		"unknown flag": `
type: srogs
template: t.docx
filename_suffix: s
flags:
  - {name: HasUnicorns, count: 3}
`,
		"duplicate flag": `
type: srogs
template: t.docx
filename_suffix: s
flags:
  - {name: HasVermin, count: 3}
  - {name: HasVermin, count: 4}
`,
		"general without count": `
type: srogs
template: t.docx
filename_suffix: s
general_flag: SROGsGeneral
flags:
  - {name: HasVermin, count: 3}
`,
		"pods with general": `
type: pods
template: t.docx
filename_suffix: s
general_flag: HasVermin
flags:
  - {name: HasVermin, count: 3}
`,
		"override of unknown option": `
type: srogs
template: t.docx
filename_suffix: s
overrides:
  vermin/dragons: [HasVermin]
flags:
  - {name: HasVermin, count: 3}
`,
		"unknown type": `
type: depositions
template: t.docx
filename_suffix: s
flags:
  - {name: HasVermin, count: 3}
`,
	}
	for name, def := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(testRules), []byte(def))
			assert.Error(t, err)
		})
	}
}

func TestAuditReportsUnmappedFlags(t *testing.T) {
	def := `
type: srogs
template: t.docx
filename_suffix: s
flags:
  - {name: HasVermin, count: 3}
`
	r, err := Parse([]byte(testRules), []byte(def))
	require.NoError(t, err)
	p, err := r.Get(models.ProfileSROGs)
	require.NoError(t, err)

	assert.Equal(t, []string{"HasRatsMice", "IsManager", "IsOwner"}, Audit(p))

	_, err = r.Get(models.ProfilePODs)
	assert.ErrorIs(t, err, ErrUnknownProfile)
}
