package intelligence

import "strings"

// MaxKeywords caps the keyword digest.
const MaxKeywords = 10

var suspiciousTerms = []string{
	"urgent", "verify", "block", "suspend", "otp", "upi",
	"bank", "pay", "transfer", "prize", "winner",
}

// KeywordDigest returns the suspicious terms present in text, in list
// order, without duplicates and at most MaxKeywords long.
func KeywordDigest(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, term := range suspiciousTerms {
		if len(out) == MaxKeywords {
			break
		}
		if strings.Contains(lower, term) {
			out = append(out, term)
		}
	}
	return out
}
