package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		min, max float64
	}{
		{"exact ignoring case and spaces", "  JEAN dupont ", "jean Dupont", 1, 1},
		{"reversed order", "Jean Dupont", "Dupont Jean", 0.9, 1},
		{"one letter typo", "Jean Dupont", "Jean Dupond", 0.9, 0.95},
		{"unrelated", "Marie Koné", "Jean Dupont", 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NameSimilarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestNameSimilarity_PartialTokenIsDiscounted(t *testing.T) {
	// direct similarity is 1 - 7/11; the shared "jean" token scores 1 * 0.8
	assert.InDelta(t, 0.8, NameSimilarity("Jean", "Jean Dupont"), 1e-9)
}

func TestNameSimilarity_SkipsSingleLetterTokens(t *testing.T) {
	// "j" matches "j" exactly but initials are ignored by the partial pass
	got := NameSimilarity("J Abc", "J Xyz")
	assert.Less(t, got, 0.8)
}

func TestEmailSimilarity(t *testing.T) {
	t.Run("exact ignoring case and spaces", func(t *testing.T) {
		assert.Equal(t, 1.0, EmailSimilarity(" John@X.com", "john@x.com "))
	})

	t.Run("same local part different domain", func(t *testing.T) {
		assert.GreaterOrEqual(t, EmailSimilarity("john@x.com", "john@y.com"), 0.9)
	})

	t.Run("same domain similar local part", func(t *testing.T) {
		// overall similarity 1 - 2/15 beats 0.9 * (1 - 2/6) + 0.1
		assert.InDelta(t, 1-2.0/15, EmailSimilarity("jean@test.com", "jean.d@test.com"), 1e-9)
	})

	t.Run("missing at sign", func(t *testing.T) {
		got := EmailSimilarity("jean", "jean@test.com")
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	})

	t.Run("both empty", func(t *testing.T) {
		assert.Equal(t, 1.0, EmailSimilarity("", ""))
	})
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"+225 07 00 00 00 00", "700000000"},
		{"0700000000", "700000000"},
		{"12-34", "1234"},
		{"(07) 12.34.56", "07123456"},
		{"n/a", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizePhone(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 9)
		})
	}
}

func TestPhoneSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b *string
		want float64
	}{
		{"first missing", nil, strPtr("0700000000"), 0},
		{"second missing", strPtr("0700000000"), nil, 0},
		{"both missing", nil, nil, 0},
		{"no digits", strPtr("n/a"), strPtr("-"), 0},
		{"country code variation", strPtr("+225 07 00 00 00 00"), strPtr("0700000000"), 1},
		{"short but equal", strPtr("1234"), strPtr("1234"), 1},
		{"short and different", strPtr("1234"), strPtr("1235"), 0},
		{"partial entry", strPtr("0700000001"), strPtr("00000001"), 0.9},
		{"one digit apart", strPtr("0700000001"), strPtr("0700000002"), 1 - 1.0/9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PhoneSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
