package dedup

import (
	"fmt"
	"math"
)

// Scoring weights and thresholds. The UI reason messages and grouping
// behavior depend on these exact values.
const (
	NameWeight  = 0.4
	EmailWeight = 0.4
	PhoneWeight = 0.2

	// ReasonThreshold is the field score from which a reason is reported.
	ReasonThreshold = 0.8

	ExactEmailScore = 1.0
	ExactPhoneScore = 0.95

	BoostNameThreshold  = 0.7
	BoostEmailThreshold = 0.7
	BoostPhoneThreshold = 0.8
	BoostedScore        = 0.85
)

// Fields are the comparable attributes of a record.
type Fields struct {
	Name  string
	Email string
	Phone *string // nil when unknown
}

// Score is the outcome of comparing two records.
type Score struct {
	Score      float64  `json:"score"`
	NameScore  float64  `json:"name_score"`
	EmailScore float64  `json:"email_score"`
	PhoneScore float64  `json:"phone_score"`
	Reasons    []string `json:"reasons"`
}

// CalculateDuplicateScore compares two records field by field and combines
// the field scores into a single duplicate score in [0,1].
//
// An exact email match is conclusive and an exact phone match nearly so;
// otherwise the weighted sum applies, lifted to BoostedScore when the name
// agrees with either the email or the phone.
func CalculateDuplicateScore(r1, r2 Fields) Score {
	nameScore := NameSimilarity(r1.Name, r2.Name)
	emailScore := EmailSimilarity(r1.Email, r2.Email)
	phoneScore := PhoneSimilarity(r1.Phone, r2.Phone)

	reasons := []string{}
	if nameScore >= ReasonThreshold {
		reasons = append(reasons, fmt.Sprintf("Similar name (%d%%)", percent(nameScore)))
	}
	if emailScore >= ReasonThreshold {
		reasons = append(reasons, fmt.Sprintf("Similar email (%d%%)", percent(emailScore)))
	}
	if phoneScore >= ReasonThreshold {
		reasons = append(reasons, fmt.Sprintf("Similar phone (%d%%)", percent(phoneScore)))
	}

	var score float64
	switch {
	case emailScore == 1:
		score = ExactEmailScore
	case phoneScore == 1:
		score = ExactPhoneScore
	default:
		score = NameWeight*nameScore + EmailWeight*emailScore + PhoneWeight*phoneScore
		if nameScore >= BoostNameThreshold && emailScore >= BoostEmailThreshold {
			score = max(score, BoostedScore)
		}
		if nameScore >= BoostNameThreshold && phoneScore >= BoostPhoneThreshold {
			score = max(score, BoostedScore)
		}
	}

	return Score{
		Score:      score,
		NameScore:  nameScore,
		EmailScore: emailScore,
		PhoneScore: phoneScore,
		Reasons:    reasons,
	}
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}
