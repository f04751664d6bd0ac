package core

// Registry of providers the ingestion feed is allowed to cite. Anything
// else is rejected at put time.
var knownSources = map[string]struct{}{
	"World Bank Open Data":                            {},
	"Climate TRACE":                                   {},
	"UN SDG Database":                                 {},
	"NASA POWER":                                      {},
	"IPCC Climate Reports":                            {},
	"NOAA Global Monitoring Laboratory":               {},
	"International Energy Agency":                     {},
	"International Transport Forum":                   {},
	"Global Alliance for Buildings and Construction":  {},
	"Climate Knowledge Base":                          {},
}

func KnownSource(name string) bool {
	_, ok := knownSources[name]
	return ok
}

// RegisterSource extends the provider registry. Meant for wiring new feed
// collaborators at startup, before any ingestion runs.
func RegisterSource(name string) {
	knownSources[name] = struct{}{}
}

// Categories the advisor understands. Used for validation and for picking
// a fallback template when the generation service is down.
const (
	CategoryClimateIndicators  = "climate_indicators"
	CategoryEmissionsData      = "emissions_data"
	CategorySDGTargets         = "sdg_targets"
	CategoryRenewablePotential = "renewable_potential"
	CategoryClimateScience     = "climate_science"
	CategoryRenewableEnergy    = "renewable_energy"
	CategoryEnergy             = "energy"
	CategoryEnergyEfficiency   = "energy_efficiency"
	CategoryTransportation     = "transportation"
	CategoryFood               = "food"
	CategoryWater              = "water"
	CategoryWaste              = "waste"
)

var knownCategories = map[string]struct{}{
	CategoryClimateIndicators:  {},
	CategoryEmissionsData:      {},
	CategorySDGTargets:         {},
	CategoryRenewablePotential: {},
	CategoryClimateScience:     {},
	CategoryRenewableEnergy:    {},
	CategoryEnergy:             {},
	CategoryEnergyEfficiency:   {},
	CategoryTransportation:     {},
	CategoryFood:               {},
	CategoryWater:              {},
	CategoryWaste:              {},
}

func KnownCategory(name string) bool {
	_, ok := knownCategories[name]
	return ok
}

// RegisterCategory extends the category set, for the same wiring window as
// RegisterSource.
func RegisterCategory(name string) {
	knownCategories[name] = struct{}{}
}
