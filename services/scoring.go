package services

import "jusfiscal/models"

// MaxLeadScore caps the qualification score.
const MaxLeadScore = 100

// Point values per populated field. Sectors and sizes not listed fall
// into the default tier; missing optional fields contribute nothing.
var (
	sectorPoints = map[string]int{
		"Indústria":  15,
		"Comércio":   12,
		"Tecnologia": 12,
		"Serviços":   10,
		"Construção": 8,
	}
	defaultSectorPoints = 3

	companySizePoints = map[string]int{
		"Média":   15,
		"Pequena": 10,
		"Micro":   5,
	}

	taxRegimePoints = map[string]int{
		"Lucro Real":       15,
		"Lucro Presumido":  10,
		"Simples Nacional": 5,
	}
)

// scoreRelevantFields are the updatable lead fields that feed
// ComputeScore. An update touching any of them triggers a recompute.
var scoreRelevantFields = map[string]bool{
	"sector":                       true,
	"company_size":                 true,
	"annual_revenue":               true,
	"tax_regime":                   true,
	"email":                        true,
	"phone":                        true,
	"contact_name":                 true,
	"linkedin_profile":             true,
	"instagram_profile":            true,
	"estimated_recovery_potential": true,
}

// ComputeScore derives the qualification score from the lead's current
// fields. It is a pure function: identical field values always yield
// an identical score.
func ComputeScore(lead *models.Lead) int {
	score := 0

	if lead.Email != "" {
		score += 15
	}
	if lead.Phone != "" {
		score += 10
	}
	if lead.LinkedInProfile != "" {
		score += 10
	}
	if lead.InstagramProfile != "" {
		score += 5
	}
	if lead.ContactName != "" {
		score += 5
	}

	if lead.Sector != "" {
		if pts, ok := sectorPoints[lead.Sector]; ok {
			score += pts
		} else {
			score += defaultSectorPoints
		}
	}
	score += companySizePoints[lead.CompanySize]
	score += taxRegimePoints[lead.TaxRegime]

	if lead.EstimatedRecoveryPotential != nil {
		switch potential := *lead.EstimatedRecoveryPotential; {
		case potential >= 500000:
			score += 20
		case potential >= 100000:
			score += 15
		case potential >= 50000:
			score += 10
		case potential > 0:
			score += 5
		}
	}

	if score > MaxLeadScore {
		score = MaxLeadScore
	}
	return score
}

// TouchesScore reports whether any of the given update columns is part
// of the score-relevant field set.
func TouchesScore(columns map[string]interface{}) bool {
	for col := range columns {
		if scoreRelevantFields[col] {
			return true
		}
	}
	return false
}
