package pipeline

import (
	"testing"

	"discovery-backend/models"
	"discovery-backend/profiles"
	"discovery-backend/taxonomy"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCatalogOptionHasRules(t *testing.T) {
	cat, err := taxonomy.Default()
	require.NoError(t, err)
	for _, p := range profiles.MustLoad().All() {
		for _, c := range cat.Categories() {
			for _, o := range c.Options {
				_, ok := p.Rules().Lookup(c.Code, o.Code)
				assert.True(t, ok, "%s: %s/%s", p.Type(), c.Code, o.Code)
			}
		}
	}
}

func TestRunLosAngelesAdmissions(t *testing.T) {
	e := testEngine(t, DefaultOptions())

	res, err := e.Run(losAngelesCase())
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)
	require.Len(t, res.Pairs[0].Profiles, 3)
	assert.Empty(t, res.Failures())
	assert.Empty(t, res.Warnings)

	adm := res.Pairs[0].Profiles[2]
	require.Equal(t, models.ProfileAdmissions, adm.Profile)
	for _, name := range []string{"AdmissionsGeneral", "HasRatsMice", "HasMold", "IsOwner", "HasLosAngeles"} {
		assert.True(t, adm.Flags.Has(name), name)
	}
	require.NotEmpty(t, adm.Sets)
	first := setNames(adm.Sets[0])
	assert.Contains(t, first, "AdmissionsGeneral")
	assert.Contains(t, first, "IsOwner")
	for _, s := range adm.Sets[1:] {
		assert.NotContains(t, setNames(s), "AdmissionsGeneral")
		assert.NotContains(t, setNames(s), "IsOwner")
	}
	requirePartition(t, adm.Dataset, adm.Sets, DefaultCeiling)

	require.Len(t, res.Consolidated, 3)
	assert.Equal(t, 58, res.Consolidated[2].Summary.TotalInterrogatories)
}

func TestRunPairsAreIndependent(t *testing.T) {
	c := losAngelesCase()
	c.Plaintiffs = append(c.Plaintiffs,
		plaintiff("Ana", "Reyes", "7", true, models.IssueSelection{"insects": {"roaches"}}))
	c.Defendants = append(c.Defendants, defendant("Pat", "Kim", false, true))

	res, err := testEngine(t, DefaultOptions()).Run(c)
	require.NoError(t, err)
	require.Len(t, res.Pairs, 2*2)

	maria := res.Pairs[0].Profiles[0]
	ana := res.Pairs[2].Profiles[0]
	assert.True(t, maria.Flags.Has("HasRatsMice"))
	assert.False(t, maria.Flags.Has("HasRoaches"))
	assert.True(t, ana.Flags.Has("HasRoaches"))
	assert.False(t, ana.Flags.Has("HasRatsMice"))

	// Owner vs manager only defendant.
	assert.True(t, res.Pairs[0].Profiles[0].Flags.Has("IsOwner"))
	assert.True(t, res.Pairs[1].Profiles[0].Flags.Has("IsManager"))
	assert.False(t, res.Pairs[1].Profiles[0].Flags.Has("IsOwner"))

	for _, cp := range res.Consolidated {
		assert.Equal(t, 4, cp.Summary.DatasetCount)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	c := everythingCase(t)
	c.Plaintiffs = append(c.Plaintiffs,
		plaintiff("Ana", "Reyes", "7", true, models.IssueSelection{"insects": {"roaches"}, "plumbing": {"toilet"}}),
		plaintiff("Tom", "Reyes", "7", false, models.IssueSelection{"vermin": {"bats"}}),
	)
	c.Defendants = append(c.Defendants, defendant("Pat", "Kim", false, true), defendant("Lee", "Chan", true, false))

	serial := DefaultOptions()
	serial.Workers = 1
	parallel := DefaultOptions()
	parallel.Workers = 16

	want, err := testEngine(t, serial).Run(c)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := testEngine(t, parallel).Run(c)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("run %d differs from serial run (-want +got):\n%s", i, diff)
		}
	}
}

func TestRunValidation(t *testing.T) {
	e := testEngine(t, DefaultOptions())

	bad := losAngelesCase()
	bad.Plaintiffs[0].Issues["vermin"] = append(bad.Plaintiffs[0].Issues["vermin"], "dragons")
	res, err := e.Run(bad)
	assert.Nil(t, res)
	require.ErrorIs(t, err, taxonomy.ErrUnknownOption)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Maria Lopez", ve.Plaintiff)
	assert.Equal(t, "vermin", ve.Category)
	assert.Equal(t, "dragons", ve.Option)

	noDefendants := losAngelesCase()
	noDefendants.Defendants = nil
	_, err = e.Run(noDefendants)
	assert.ErrorIs(t, err, ErrNoDefendants)

	_, err = e.Run(nil)
	assert.ErrorIs(t, err, ErrNilCase)
}

func TestRunIsolatesConfigErrors(t *testing.T) {
	pods := `
type: pods
template: PODsMaster.docx
filename_suffix: Discovery Propounded PODs
flags:
  - {name: IsOwnerManager, count: 14, first_set_only: true}
  - {name: HasVermin, count: 2}
  - {name: HasRatsMice, count: 3}
`
	r, err := profiles.Parse([]byte(unmappedRules), []byte(unmappedSROGs), []byte(pods))
	require.NoError(t, err)
	cat, err := taxonomy.Default()
	require.NoError(t, err)

	c := losAngelesCase()
	c.Plaintiffs[0].Issues = models.IssueSelection{"vermin": {"rats_mice"}}
	res, err := NewEngine(cat, r, DefaultOptions()).Run(c)
	require.NoError(t, err)
	require.Len(t, res.Pairs[0].Profiles, 2)

	srogs := res.Pairs[0].Profiles[0]
	assert.True(t, srogs.Failed())
	assert.ErrorIs(t, srogs.Err, ErrUnmappedFlag)
	assert.Empty(t, srogs.Sets)

	podResult := res.Pairs[0].Profiles[1]
	require.False(t, podResult.Failed())
	assert.Equal(t, 19, podResult.Dataset.Total)

	failures := res.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, models.ProfileSROGs, failures[0].Profile)
	assert.Equal(t, "Maria Lopez v. Sunset Holdings LLC", failures[0].PairName)

	assert.Zero(t, res.Consolidated[0].Summary.DatasetCount)
	assert.Equal(t, 1, res.Consolidated[1].Summary.DatasetCount)
}

func TestRunOversizeReject(t *testing.T) {
	opts := DefaultOptions()
	opts.Ceiling = 50
	opts.Oversize = OversizeReject
	opts.Profiles = []models.ProfileType{models.ProfileSROGs, models.ProfilePODs}

	res, err := testEngine(t, opts).Run(losAngelesCase())
	require.NoError(t, err)
	require.Len(t, res.Pairs[0].Profiles, 2)
	assert.ErrorIs(t, res.Pairs[0].Profiles[0].Err, ErrFirstSetOverflow)
	assert.False(t, res.Pairs[0].Profiles[1].Failed())
	requirePartition(t, res.Pairs[0].Profiles[1].Dataset, res.Pairs[0].Profiles[1].Sets, 50)
}

func TestRunWarnsAboutUnrepresentedPlaintiffs(t *testing.T) {
	c := losAngelesCase()
	c.Plaintiffs = append(c.Plaintiffs,
		plaintiff("Luis", "Lopez", "4", false, models.IssueSelection{"insects": {"roaches"}}))

	res, err := testEngine(t, DefaultOptions()).Run(c)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Luis Lopez")

	opts := DefaultOptions()
	opts.Household = HouseholdMerge
	res, err = testEngine(t, opts).Run(c)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.Pairs[0].Profiles[0].Flags.Has("HasRoaches"))
}

func TestRunUnknownProfile(t *testing.T) {
	opts := DefaultOptions()
	opts.Profiles = []models.ProfileType{"interrogatories"}
	_, err := testEngine(t, opts).Run(losAngelesCase())
	assert.ErrorIs(t, err, profiles.ErrUnknownProfile)
}
