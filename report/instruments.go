package report

import "github.com/wudi/reportkit/ranking"

// Category describes one scored category of an instrument.
type Category struct {
	Code        string
	Label       string
	Description string
}

// Instrument is a psychometric test with a fixed category alphabet. The
// order of Categories is the canonical key order used for tie-breaks and
// bar order.
type Instrument struct {
	ID         string
	Name       string
	Title      string
	Intro      string
	Categories []Category
}

// Order returns the canonical key order.
func (in Instrument) Order() []string {
	keys := make([]string, len(in.Categories))
	for i, c := range in.Categories {
		keys[i] = c.Code
	}
	return keys
}

// Category returns the category for code.
func (in Instrument) Category(code string) (Category, bool) {
	for _, c := range in.Categories {
		if c.Code == code {
			return c, true
		}
	}
	return Category{}, false
}

// Label returns the display label for code, or code itself.
func (in Instrument) Label(code string) string {
	if c, ok := in.Category(code); ok {
		return c.Label
	}
	return code
}

// Rank orders scores by this instrument's canonical order.
func (in Instrument) Rank(scores ResultSet) []ranking.Entry {
	return ranking.Rank(scores, in.Order())
}

var DISC = Instrument{
	ID:    "disc",
	Name:  "DISC",
	Title: "Behavioral Profile (DISC)",
	Intro: "DISC describes how you tend to act, communicate and make decisions. " +
		"Each bar shows the intensity of one behavioral style.",
	Categories: []Category{
		{"D", "Dominance", "Direct and decisive. You take charge, set the pace and look for results and challenges."},
		{"I", "Influence", "Outgoing and persuasive. You energise people, build networks and communicate with enthusiasm."},
		{"S", "Steadiness", "Patient and dependable. You value cooperation, stability and supporting the people around you."},
		{"C", "Conscientiousness", "Precise and analytical. You care about quality, accuracy and doing things the right way."},
	},
}

var MI = Instrument{
	ID:    "mi",
	Name:  "Multiple Intelligences",
	Title: "Multiple Intelligences",
	Intro: "The theory of multiple intelligences looks at the different ways people learn and solve problems. " +
		"Higher bars mark the abilities you rely on most.",
	Categories: []Category{
		{"LIN", "Linguistic", "Skill with words, reading, writing and explaining ideas clearly."},
		{"LOG", "Logical-Mathematical", "Reasoning, numbers, patterns and solving problems step by step."},
		{"SPA", "Spatial", "Thinking in images, visualising space, design and orientation."},
		{"BOD", "Bodily-Kinesthetic", "Learning by doing, coordination and skill with hands and body."},
		{"MUS", "Musical", "Sensitivity to rhythm, sound, tone and musical patterns."},
		{"INTER", "Interpersonal", "Understanding others, cooperating and leading groups."},
		{"INTRA", "Intrapersonal", "Self-knowledge, reflection and managing your own emotions and goals."},
		{"NAT", "Naturalist", "Observing, classifying and caring for nature and living systems."},
	},
}

var RIASEC = Instrument{
	ID:    "riasec",
	Name:  "RIASEC",
	Title: "Vocational Interests (RIASEC)",
	Intro: "The Holland model groups work interests into six types. " +
		"Your three strongest types form your Holland code.",
	Categories: []Category{
		{"R", "Realistic", "Practical, hands-on work with tools, machines, plants or animals."},
		{"I", "Investigative", "Research, analysis and solving abstract or scientific problems."},
		{"A", "Artistic", "Creative expression, design, writing and original ideas."},
		{"S", "Social", "Teaching, helping, advising and caring for people."},
		{"E", "Enterprising", "Leading, persuading, selling and taking business risks."},
		{"C", "Conventional", "Organising data, following procedures and keeping things in order."},
	},
}

var Archetypes = Instrument{
	ID:    "archetypes",
	Name:  "Archetypes",
	Title: "Personality Archetypes",
	Intro: "Archetypes are recurring patterns of motivation. " +
		"The strongest ones hint at what drives you and how others may see you.",
	Categories: []Category{
		{"INN", "Innocent", "Optimistic and sincere, seeking simplicity, trust and goodness."},
		{"EVE", "Everyman", "Down to earth and relatable, valuing belonging and fairness."},
		{"HER", "Hero", "Courageous and determined, proving worth through effort and mastery."},
		{"CAR", "Caregiver", "Generous and protective, finding meaning in helping others."},
		{"EXP", "Explorer", "Independent and curious, driven by discovery and freedom."},
		{"REB", "Rebel", "Bold and disruptive, challenging rules that no longer work."},
		{"LOV", "Lover", "Warm and passionate, building close relationships and harmony."},
		{"CRE", "Creator", "Imaginative and inventive, turning ideas into lasting work."},
		{"JES", "Jester", "Playful and spontaneous, bringing joy and lightness to others."},
		{"SAG", "Sage", "Thoughtful and wise, pursuing truth and understanding."},
		{"MAG", "Magician", "Visionary and transformative, making change happen."},
		{"RUL", "Ruler", "Responsible and organised, creating order and leading with control."},
	},
}

// Instruments lists the scored instruments in report order.
func Instruments() []Instrument {
	return []Instrument{DISC, MI, RIASEC, Archetypes}
}
