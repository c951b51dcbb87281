package registry

import "github.com/wirvsvirus/landingzone/datasource"

// Kinds of county, Stadtkreis (city) and Landkreis (rural)
const (
	KindCityCounty  = "SK"
	KindRuralCounty = "LK"
)

// countyAdminColumns are administrative keys of the county dataset which do
// not describe the infection situation
var countyAdminColumns = []string{
	"OBJECTID", "ADE", "GF", "BSG", "RS", "AGS", "SDV_RS", "BEZ", "IBZ", "BEM",
	"NBD", "SN_L", "SN_R", "SN_K", "SN_V1", "SN_V2", "SN_G", "FK_S3", "NUTS",
	"RS_0", "AGS_0", "WSK", "DEBKG_ID", "Shape__Area", "Shape__Length", "BL_ID",
}

// CountyCleansing drops the administrative columns of the county dataset,
// classifies each county as SK or LK from the prefix of its name and
// normalises the remaining column names.
func CountyCleansing() *datasource.Cleansing {
	return &datasource.Cleansing{
		Drop: countyAdminColumns,
		Derive: []datasource.Derivation{{
			Source:    "county",
			Target:    "kind_of_county",
			Transform: countyPrefix,
			// the prefix is positional, anything else means the upstream format changed
			Allowed: []string{KindCityCounty, KindRuralCounty},
		}},
		Rename: map[string]string{
			"BL":    "federal_state",
			"GEN":   "county",
			"cases": "cumulative_cases",
			"EWZ":   "population",
			"KFL":   "county_km2",
		},
	}
}

func countyPrefix(county string) string {
	if len(county) < 2 {
		return county
	}
	return county[:2]
}
