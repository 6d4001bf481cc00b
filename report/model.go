package report

import (
	"strconv"
	"strings"

	"github.com/wudi/reportkit/ranking"
)

// NotInformed replaces profile fields the respondent left blank.
const NotInformed = "Not informed"

// ResultSet maps category codes to scores. Missing codes score 0 and values
// are clamped to [0,100] when read.
type ResultSet map[string]int

// Score returns the clamped score for code.
func (r ResultSet) Score(code string) int { return ranking.Clamp(r[code]) }

// Profile is the respondent's intake record. Every field is optional.
type Profile struct {
	Name             string   `json:"name" yaml:"name"`
	Age              int      `json:"age,omitempty" yaml:"age"`
	Location         string   `json:"location,omitempty" yaml:"location"`
	Email            string   `json:"email,omitempty" yaml:"email"`
	EducationLevel   string   `json:"education_level,omitempty" yaml:"education_level"`
	EducationField   string   `json:"education_field,omitempty" yaml:"education_field"`
	EmploymentStatus string   `json:"employment_status,omitempty" yaml:"employment_status"`
	Role             string   `json:"role,omitempty" yaml:"role"`
	Interests        []string `json:"interests,omitempty" yaml:"interests"`
	Goals            []string `json:"goals,omitempty" yaml:"goals"`
}

// DisplayName returns the name or the placeholder.
func (p Profile) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return NotInformed
}

// FirstName returns the first word of the name, or "".
func (p Profile) FirstName() string {
	if f := strings.Fields(p.Name); len(f) > 0 {
		return f[0]
	}
	return ""
}

// field is one labelled row of the profile table.
type field struct{ label, value string }

func (p Profile) fields() []field {
	age := ""
	if p.Age > 0 {
		age = strconv.Itoa(p.Age)
	}
	return []field{
		{"Name", p.Name},
		{"Age", age},
		{"Location", p.Location},
		{"Email", p.Email},
		{"Education", joinNonEmpty(" - ", p.EducationLevel, p.EducationField)},
		{"Employment", joinNonEmpty(" - ", p.EmploymentStatus, p.Role)},
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, sep)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotInformed
	}
	return s
}

// Input carries everything one report is assembled from.
type Input struct {
	Profile    Profile   `json:"profile" yaml:"profile"`
	DISC       ResultSet `json:"disc" yaml:"disc"`
	MI         ResultSet `json:"mi" yaml:"mi"`
	RIASEC     ResultSet `json:"riasec" yaml:"riasec"`
	Archetypes ResultSet `json:"archetypes" yaml:"archetypes"`
	Narrative  string    `json:"narrative" yaml:"narrative"`
	// Seed is a PDF, raw or base64 encoded, proving a valid container. Its
	// pages are not copied into the report.
	Seed []byte `json:"seed" yaml:"seed"`
}

// Scores returns the result set for inst.
func (in *Input) Scores(inst Instrument) ResultSet {
	switch inst.ID {
	case DISC.ID:
		return in.DISC
	case MI.ID:
		return in.MI
	case RIASEC.ID:
		return in.RIASEC
	case Archetypes.ID:
		return in.Archetypes
	}
	return nil
}
