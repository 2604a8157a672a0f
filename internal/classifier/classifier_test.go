package classifier

import (
	"math"
	"testing"

	"github.com/MikeSquared-Agency/honeypot/internal/conversation"
)

func newDefault() *Classifier {
	return New(DefaultTable())
}

func TestClassify_EmptyInput(t *testing.T) {
	c := newDefault()
	for _, in := range []string{"", "   ", "\n\t"} {
		r := c.Classify(in, nil)
		if r.IsScam || r.Confidence != 0 || r.RawScore != 0 {
			t.Errorf("Classify(%q): expected zero result, got %+v", in, r)
		}
		if r.Category != CategoryGeneric {
			t.Errorf("Classify(%q): expected %q, got %q", in, CategoryGeneric, r.Category)
		}
		if len(r.RiskFactors) != 0 {
			t.Errorf("Classify(%q): expected no risk factors, got %v", in, r.RiskFactors)
		}
	}
}

func TestClassify_NoSignals(t *testing.T) {
	r := newDefault().Classify("Hello there, how was the cricket match yesterday?", nil)
	if r.Confidence != 0.0 {
		t.Errorf("expected confidence 0, got %f", r.Confidence)
	}
	if r.IsScam {
		t.Error("expected isScam false")
	}
	if r.Category != CategoryGeneric {
		t.Errorf("expected generic category, got %q", r.Category)
	}
}

func TestClassify_BlockedAccountScenario(t *testing.T) {
	msg := "Your account will be blocked! Verify immediately by sending OTP to 9876543210"
	r := newDefault().Classify(msg, nil)

	// verify 2.5 + immediate 3.0 + otp 3.5 + block 3.5 + urgency 2.0 + sensitive 3.0 + phone 1.5
	if math.Abs(r.RawScore-19.0) > 1e-9 {
		t.Errorf("expected raw score 19.0, got %f", r.RawScore)
	}
	if r.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %f", r.Confidence)
	}
	if !r.IsScam {
		t.Error("expected isScam true")
	}
	if r.Category != CategoryBankAccount {
		t.Errorf("expected %q, got %q", CategoryBankAccount, r.Category)
	}

	want := []string{
		"Scam keyword: 'verify'",
		"Scam keyword: 'immediate'",
		"Scam keyword: 'otp'",
		"Scam keyword: 'block'",
		"Urgency tactic detected",
		"Requesting sensitive information",
		"Contains phone number",
	}
	if len(r.RiskFactors) != len(want) {
		t.Fatalf("expected %d risk factors, got %v", len(want), r.RiskFactors)
	}
	for i := range want {
		if r.RiskFactors[i] != want[i] {
			t.Errorf("risk factor %d: expected %q, got %q", i, want[i], r.RiskFactors[i])
		}
	}
}

func TestClassify_SignalsCappedOnce(t *testing.T) {
	// Two urgency phrases and two sensitive-data phrases still count once each.
	r := newDefault().Classify("right now asap send pin and cvv", nil)
	// urgency 2.0 + sensitive 3.0
	if r.RawScore != 5.0 {
		t.Errorf("expected raw score 5.0, got %f (%v)", r.RawScore, r.RiskFactors)
	}
}

func TestClassify_Threshold(t *testing.T) {
	tests := []struct {
		name   string
		msg    string
		score  float64
		isScam bool
	}{
		// lottery 4.0 + winner 3.0 + prize 3.0 = 10.0 -> 0.667
		{"prize scam", "You are the winner of our lottery prize", 10.0, true},
		// refund 2.5 + money 3.0 = 5.5 -> 0.367
		{"below threshold", "refund of rs 500 pending", 5.5, false},
		// fraud 3.0 + act now 3.0 + unauthorized 3.0 = 9.0 -> 0.6
		{"at threshold", "fraud alert, act now, unauthorized login", 9.0, true},
	}
	c := newDefault()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.Classify(tt.msg, nil)
			if math.Abs(r.RawScore-tt.score) > 1e-9 {
				t.Errorf("expected score %f, got %f (%v)", tt.score, r.RawScore, r.RiskFactors)
			}
			if r.IsScam != tt.isScam {
				t.Errorf("expected isScam %v, got %v (confidence %f)", tt.isScam, r.IsScam, r.Confidence)
			}
		})
	}
}

func TestClassify_CategoryCascade(t *testing.T) {
	tests := []struct {
		msg  string
		want Category
	}{
		{"share your upi pin now", CategoryUPI},
		{"tell me the otp", CategoryOTP},
		{"send your pin", CategoryOTP},
		{"you are a winner", CategoryPrize},
		{"complete your kyc today", CategoryKYC},
		{"please verify yourself", CategoryKYC},
		{"open http://evil.example/login", CategoryPhishing},
		{"hello friend", CategoryGeneric},
		// bank precedes every other rule
		{"bank otp upi lottery kyc", CategoryBankAccount},
		// upi precedes otp
		{"upi otp", CategoryUPI},
	}
	c := newDefault()
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := c.Classify(tt.msg, nil).Category; got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClassify_MonotonicInSignals(t *testing.T) {
	c := newDefault()
	steps := []string{
		"hello",
		"hello urgent",
		"hello urgent share otp",
		"hello urgent share otp at http://x.example",
		"hello urgent share otp at http://x.example or call 9123456789",
		"hello urgent share otp at http://x.example or call 9123456789 and pay 500",
	}
	prev := -1.0
	for _, s := range steps {
		r := c.Classify(s, nil)
		if r.Confidence < prev {
			t.Errorf("confidence dropped to %f on %q (was %f)", r.Confidence, s, prev)
		}
		prev = r.Confidence
	}
}

func TestClassify_HistoryIgnored(t *testing.T) {
	history := []conversation.Message{
		{Sender: conversation.Counterpart, Text: "URGENT: share your OTP and bank account number"},
	}
	r := newDefault().Classify("hello", history)
	if r.Confidence != 0 {
		t.Errorf("expected zero confidence, got %f", r.Confidence)
	}
}

func TestClassify_CustomTable(t *testing.T) {
	c := New(Table{Keywords: []Keyword{{"gift card", 15.0}}})
	r := c.Classify("buy a Gift Card", nil)
	if !r.IsScam || r.Confidence != 1.0 {
		t.Errorf("expected full-confidence scam, got %+v", r)
	}
}
