package classifier

import (
	"fmt"
	"math"
	"strings"

	"github.com/MikeSquared-Agency/honeypot/internal/conversation"
)

const (
	// Normalization divides the raw score into a confidence value.
	Normalization = 15.0
	// Threshold is the confidence at or above which a message is a scam.
	Threshold = 0.6
)

// Category labels the kind of fraud a message looks like.
type Category string

const (
	CategoryBankAccount Category = "Bank Account Fraud"
	CategoryUPI         Category = "UPI Fraud"
	CategoryOTP         Category = "OTP/PIN Theft"
	CategoryPrize       Category = "Prize/Lottery Scam"
	CategoryKYC         Category = "KYC/Verification Scam"
	CategoryPhishing    Category = "Phishing"
	CategoryGeneric     Category = "Generic Fraud"
)

// categoryRules is the priority cascade; the first rule with a term present
// in the lowercased message wins.
var categoryRules = []struct {
	category Category
	terms    []string
}{
	{CategoryBankAccount, []string{"bank", "account"}},
	{CategoryUPI, []string{"upi"}},
	{CategoryOTP, []string{"otp", "pin"}},
	{CategoryPrize, []string{"prize", "winner", "lottery"}},
	{CategoryKYC, []string{"kyc", "verify"}},
}

// Result is the verdict for a single message.
type Result struct {
	IsScam      bool     `json:"isScam"`
	Confidence  float64  `json:"confidence"`
	Category    Category `json:"scamCategory"`
	RiskFactors []string `json:"riskFactors"`
	RawScore    float64  `json:"rawScore"`
}

// Classifier scores messages against a Table. It holds no mutable state
// and is safe for concurrent use.
type Classifier struct {
	table Table
}

func New(table Table) *Classifier {
	return &Classifier{table: table}
}

// Classify scores message. history is part of the contract but does not
// influence the score, so a message with no signals always scores zero.
func (c *Classifier) Classify(message string, history []conversation.Message) Result {
	_ = history

	if strings.TrimSpace(message) == "" {
		return Result{Category: CategoryGeneric, RiskFactors: []string{}}
	}

	lower := strings.ToLower(message)
	score := 0.0
	factors := []string{}

	for _, kw := range c.table.Keywords {
		if strings.Contains(lower, kw.Term) {
			score += kw.Weight
			factors = append(factors, fmt.Sprintf("Scam keyword: '%s'", kw.Term))
		}
	}

	for _, rule := range c.table.Rules {
		text := lower
		if rule.CaseSensitive {
			text = message
		}
		for _, p := range rule.Patterns {
			if p.MatchString(text) {
				score += rule.Weight
				factors = append(factors, rule.Factor)
				break
			}
		}
	}

	confidence := math.Min(score/Normalization, 1.0)

	return Result{
		IsScam:      confidence >= Threshold,
		Confidence:  confidence,
		Category:    categorize(lower, factors),
		RiskFactors: factors,
		RawScore:    score,
	}
}

func categorize(lower string, factors []string) Category {
	for _, rule := range categoryRules {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				return rule.category
			}
		}
	}
	for _, f := range factors {
		if strings.Contains(strings.ToLower(f), "link") {
			return CategoryPhishing
		}
	}
	return CategoryGeneric
}
