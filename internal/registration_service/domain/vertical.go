package domain

import "strings"

// Vertical is the carrier industry category attached to brand and campaign
// registrations.
type Vertical string

const (
	VerticalConstruction   Vertical = "CONSTRUCTION"
	VerticalEnergy         Vertical = "ENERGY"
	VerticalRealEstate     Vertical = "REAL_ESTATE"
	VerticalRetail         Vertical = "RETAIL"
	VerticalProfessional   Vertical = "PROFESSIONAL"
	VerticalTechnology     Vertical = "TECHNOLOGY"
	VerticalHealthcare     Vertical = "HEALTHCARE"
	VerticalAgriculture    Vertical = "AGRICULTURE"
	VerticalTransportation Vertical = "TRANSPORTATION"
)

// industryVerticals maps the industry values the onboarding flow records
// onto carrier verticals. Unknown industries fall back to PROFESSIONAL.
var industryVerticals = map[string]Vertical{
	"hvac":             VerticalConstruction,
	"plumbing":         VerticalConstruction,
	"electrical":       VerticalEnergy,
	"roofing":          VerticalConstruction,
	"landscaping":      VerticalAgriculture,
	"cleaning":         VerticalProfessional,
	"pest-control":     VerticalProfessional,
	"property-mgmt":    VerticalRealEstate,
	"appliance-repair": VerticalRetail,
	"garage-door":      VerticalConstruction,
	"locksmith":        VerticalProfessional,
	"pool-service":     VerticalConstruction,
	"handyman":         VerticalConstruction,
	"moving":           VerticalTransportation,
	"it-services":      VerticalTechnology,
	"medical":          VerticalHealthcare,
}

// VerticalForIndustry resolves a recorded industry to a carrier vertical.
func VerticalForIndustry(industry string) Vertical {
	if v, ok := industryVerticals[strings.ToLower(strings.TrimSpace(industry))]; ok {
		return v
	}
	return VerticalProfessional
}
