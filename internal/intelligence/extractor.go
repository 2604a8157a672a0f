package intelligence

import (
	"regexp"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/honeypot/internal/classifier"
)

// Category names a bucket of extracted intelligence. The values double as
// the keys of the callback payload.
type Category string

const (
	BankAccounts       Category = "bankAccounts"
	UPIIDs             Category = "upiIds"
	PhishingLinks      Category = "phishingLinks"
	PhoneNumbers       Category = "phoneNumbers"
	SuspiciousKeywords Category = "suspiciousKeywords"
	EmailAddresses     Category = "emailAddresses"
	OrganizationNames  Category = "organizationNames"
)

// Categories lists every bucket in a stable order.
var Categories = []Category{
	BankAccounts,
	UPIIDs,
	PhishingLinks,
	PhoneNumbers,
	SuspiciousKeywords,
	EmailAddresses,
	OrganizationNames,
}

var (
	accountNumberPattern = regexp.MustCompile(`\b\d{9,18}\b`)
	ifscPattern          = regexp.MustCompile(`[A-Z]{4}0[A-Z0-9]{6}`)
	handlePattern        = regexp.MustCompile(`[\w.-]+@[\w.-]+`)
	orgPattern           = regexp.MustCompile(`(?i)(SBI|HDFC|ICICI|Axis|Paytm|PhonePe|Google Pay|Amazon|Flipkart)\s*(?:Bank|Pay)?`)
)

// paymentProviders are substrings that mark a local@domain token as a
// payment handle rather than an email address.
var paymentProviders = []string{"paytm", "phonepe", "gpay", "upi", "ybl", "okhdfcbank", "oksbi"}

// organizations maps the lowercase match to its canonical spelling so that
// "sbi" and "SBI" land on the same value.
var organizations = map[string]string{
	"sbi":        "SBI",
	"hdfc":       "HDFC",
	"icici":      "ICICI",
	"axis":       "Axis",
	"paytm":      "Paytm",
	"phonepe":    "PhonePe",
	"google pay": "Google Pay",
	"amazon":     "Amazon",
	"flipkart":   "Flipkart",
}

// Extractor accumulates intelligence across the messages of one session.
// It is not safe for concurrent use; the owning session serializes access.
type Extractor struct {
	sets map[Category]map[string]struct{}
}

func NewExtractor() *Extractor {
	sets := make(map[Category]map[string]struct{}, len(Categories))
	for _, c := range Categories {
		sets[c] = make(map[string]struct{})
	}
	return &Extractor{sets: sets}
}

// Extract scans text and adds every match to its bucket. Unmatched text
// contributes nothing.
func (e *Extractor) Extract(text string) {
	for _, m := range accountNumberPattern.FindAllString(text, -1) {
		e.add(BankAccounts, m)
	}
	for _, m := range ifscPattern.FindAllString(text, -1) {
		e.add(BankAccounts, m)
	}

	for _, m := range handlePattern.FindAllString(text, -1) {
		switch {
		case isPaymentHandle(m):
			e.add(UPIIDs, m)
		case isEmail(m):
			e.add(EmailAddresses, m)
		}
	}

	for _, m := range classifier.PhonePattern.FindAllString(text, -1) {
		e.add(PhoneNumbers, m)
	}

	for _, m := range classifier.LinkPattern.FindAllString(text, -1) {
		e.add(PhishingLinks, m)
	}

	for _, m := range orgPattern.FindAllStringSubmatch(text, -1) {
		if name, ok := organizations[strings.ToLower(m[1])]; ok {
			e.add(OrganizationNames, name)
		}
	}
}

// Add records a value directly, for intelligence derived outside Extract.
func (e *Extractor) Add(c Category, value string) {
	if value == "" {
		return
	}
	e.add(c, value)
}

func (e *Extractor) add(c Category, value string) {
	set, ok := e.sets[c]
	if !ok {
		set = make(map[string]struct{})
		e.sets[c] = set
	}
	set[value] = struct{}{}
}

// Snapshot returns the non-empty buckets. Values are sorted so snapshots
// compare cleanly; insertion order carries no meaning.
func (e *Extractor) Snapshot() map[Category][]string {
	out := make(map[Category][]string)
	for c, set := range e.sets {
		if len(set) == 0 {
			continue
		}
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		out[c] = values
	}
	return out
}

// TotalCount is the number of unique values across all buckets.
func (e *Extractor) TotalCount() int {
	n := 0
	for _, set := range e.sets {
		n += len(set)
	}
	return n
}

func isPaymentHandle(token string) bool {
	lower := strings.ToLower(token)
	for _, p := range paymentProviders {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func isEmail(token string) bool {
	at := strings.LastIndex(token, "@")
	if at <= 0 || at == len(token)-1 {
		return false
	}
	domain := token[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
