package dedup

import (
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// partialNameWeight discounts the best single-token match against whole-name matches
	partialNameWeight = 0.8
	// minNameTokenLength skips initials and particles when matching tokens
	minNameTokenLength = 2

	emailLocalWeight  = 0.9
	emailDomainBonus  = 0.1
	phoneDigitsKept   = 9
	minPhoneDigits    = 5
	phoneContainScore = 0.9
)

// NameSimilarity scores two person names in [0,1].
// It tolerates swapped first/last names and partial matches, favoring recall
// since every group is reviewed by an operator anyway.
func NameSimilarity(name1, name2 string) float64 {
	n1 := strings.ToLower(strings.TrimSpace(name1))
	n2 := strings.ToLower(strings.TrimSpace(name2))

	if n1 == n2 {
		return 1
	}

	direct := StringSimilarity(n1, n2)

	tokens1 := strings.Fields(n1)
	tokens2 := strings.Fields(n2)

	// "First Last" vs "Last First"
	var reversed float64
	if len(tokens1) >= 2 && len(tokens2) >= 2 {
		flipped := slices.Clone(tokens1)
		slices.Reverse(flipped)
		reversed = StringSimilarity(strings.Join(flipped, " "), n2)
	}

	var bestPartial float64
	for _, t1 := range tokens1 {
		if utf8.RuneCountInString(t1) < minNameTokenLength {
			continue
		}
		for _, t2 := range tokens2 {
			if utf8.RuneCountInString(t2) < minNameTokenLength {
				continue
			}
			bestPartial = max(bestPartial, StringSimilarity(t1, t2))
		}
	}

	return max(direct, reversed, bestPartial*partialNameWeight)
}

// EmailSimilarity scores two email addresses in [0,1].
// Addresses sharing a local part on different domains still score high.
func EmailSimilarity(email1, email2 string) float64 {
	e1 := strings.ToLower(strings.TrimSpace(email1))
	e2 := strings.ToLower(strings.TrimSpace(email2))

	if e1 == e2 {
		return 1
	}

	local1, domain1, _ := strings.Cut(e1, "@")
	local2, domain2, _ := strings.Cut(e2, "@")

	var domainMatch float64
	if domain1 == domain2 {
		domainMatch = emailDomainBonus
	}

	localSimilarity := StringSimilarity(local1, local2)
	overallSimilarity := StringSimilarity(e1, e2)

	return min(1, max(overallSimilarity, emailLocalWeight*localSimilarity+domainMatch))
}

// NormalizePhone strips every non-digit and keeps the last nine digits, the
// subscriber number that survives country-code and trunk-prefix variations.
func NormalizePhone(phone string) string {
	var sb strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}

	digits := sb.String()
	if len(digits) > phoneDigitsKept {
		digits = digits[len(digits)-phoneDigitsKept:]
	}
	return digits
}

// PhoneSimilarity scores two optional phone numbers in [0,1].
// A missing number gives no signal and scores 0.
func PhoneSimilarity(phone1, phone2 *string) float64 {
	if !hasPhone(phone1) || !hasPhone(phone2) {
		return 0
	}

	p1 := NormalizePhone(*phone1)
	p2 := NormalizePhone(*phone2)

	if p1 == p2 {
		return 1
	}
	if len(p1) < minPhoneDigits || len(p2) < minPhoneDigits {
		return 0
	}
	if strings.Contains(p1, p2) || strings.Contains(p2, p1) {
		return phoneContainScore
	}

	return StringSimilarity(p1, p2)
}

// hasPhone reports whether p holds at least one digit.
func hasPhone(p *string) bool {
	if p == nil {
		return false
	}
	return NormalizePhone(*p) != ""
}
