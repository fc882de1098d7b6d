package composer

import "github.com/ivlev/quizreel/internal/config"

type Phase int

const (
	LeadIn Phase = iota
	Guess
	Reveal
	Done
)

func (p Phase) String() string {
	switch p {
	case LeadIn:
		return "lead-in"
	case Guess:
		return "guess"
	case Reveal:
		return "reveal"
	}
	return "done"
}

// Timeline fixes the order and length of the phases of one question clip.
type Timeline struct {
	LeadIn float64
	Guess  float64
	Reveal float64
}

func NewTimeline(t config.Timing) Timeline {
	return Timeline{LeadIn: t.LeadIn, Guess: t.Guess, Reveal: t.Reveal}
}

func (tl Timeline) Total() float64 {
	return tl.LeadIn + tl.Guess + tl.Reveal
}

// PhaseAt maps clip time t to the active phase and the time elapsed inside it.
func (tl Timeline) PhaseAt(t float64) (Phase, float64) {
	switch {
	case t < tl.LeadIn:
		return LeadIn, t
	case t < tl.LeadIn+tl.Guess:
		return Guess, t - tl.LeadIn
	case t < tl.Total():
		return Reveal, t - tl.LeadIn - tl.Guess
	}
	return Done, t - tl.Total()
}
