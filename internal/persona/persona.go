package persona

import (
	"sync"

	"github.com/MikeSquared-Agency/honeypot/internal/classifier"
	"github.com/MikeSquared-Agency/honeypot/internal/randsrc"
)

// Persona is a victim profile the agent impersonates. The zero value means
// no persona has been assigned yet.
type Persona string

const (
	None      Persona = ""
	Elderly   Persona = "elderly"
	Eager     Persona = "eager"
	Skeptical Persona = "skeptical"
	Technical Persona = "technical"
)

// All lists every persona in selection order.
var All = []Persona{Elderly, Eager, Skeptical, Technical}

// Profile is the style guidance handed to the text generator.
type Profile struct {
	Style  string
	Sample string
}

var profiles = map[Persona]Profile{
	Elderly: {
		Style:  "confused, worried, asks for clarification, slow to understand technology",
		Sample: "Oh my! I am very worried. Can you please explain this to me slowly? I am not good with these mobile things.",
	},
	Eager: {
		Style:  "willing to help, asks questions, wants to solve the problem quickly",
		Sample: "Yes yes, I want to fix this immediately! What do I need to do? Please tell me step by step.",
	},
	Skeptical: {
		Style:  "cautious, asks for verification, wants proof",
		Sample: "Hmm, how do I know this is real? Can you give me your company details? My son told me to always verify.",
	},
	Technical: {
		Style:  "claims technical issues, asks for alternatives, needs help",
		Sample: "I am trying but getting error. Is there another way? Can you send me the link via SMS?",
	},
}

// Profile returns the style descriptor and sample utterance for p.
func (p Persona) Profile() Profile {
	return profiles[p]
}

// Strategy picks a persona once per session.
type Strategy struct {
	mu  sync.Mutex
	rng randsrc.Source
}

func NewStrategy(rng randsrc.Source) *Strategy {
	return &Strategy{rng: rng}
}

// Assign returns current unchanged when it is already set. Otherwise account
// and KYC scams get the confused or cautious victim, prize scams get the
// eager one, and anything else draws from the full set.
func (s *Strategy) Assign(current Persona, category classifier.Category) Persona {
	if current != None {
		return current
	}

	switch category {
	case classifier.CategoryBankAccount, classifier.CategoryKYC:
		return s.pick([]Persona{Elderly, Skeptical})
	case classifier.CategoryPrize:
		return Eager
	default:
		return s.pick(All)
	}
}

func (s *Strategy) pick(options []Persona) Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return options[s.rng.IntN(len(options))]
}
