package profiles

// Flags that are not produced by the issue rule table.
const (
	FlagSROGsGeneral      = "SROGsGeneral"
	FlagAdmissionsGeneral = "AdmissionsGeneral"
	FlagIsOwner           = "IsOwner"
	FlagIsManager         = "IsManager"
	FlagIsOwnerManager    = "IsOwnerManager"
)

// City pairs a property city with its geography flag.
type City struct {
	Name string
	Flag string
}

// GeographyCities is the fixed list of major California cities that carry
// their own admissions block. Matching is exact on the trimmed city name.
var GeographyCities = []City{
	{"Los Angeles", "HasLosAngeles"},
	{"San Diego", "HasSanDiego"},
	{"San Jose", "HasSanJose"},
	{"San Francisco", "HasSanFrancisco"},
	{"Fresno", "HasFresno"},
	{"Sacramento", "HasSacramento"},
	{"Long Beach", "HasLongBeach"},
	{"Oakland", "HasOakland"},
	{"Bakersfield", "HasBakersfield"},
	{"Anaheim", "HasAnaheim"},
}

func specialFlags() []string {
	flags := []string{
		FlagSROGsGeneral,
		FlagAdmissionsGeneral,
		FlagIsOwner,
		FlagIsManager,
		FlagIsOwnerManager,
	}
	for _, c := range GeographyCities {
		flags = append(flags, c.Flag)
	}
	return flags
}
