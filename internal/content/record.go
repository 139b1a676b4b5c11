// Package content defines the content record model consumed by the document
// generators: the record itself, the subject and grade-level enumerations, and
// the pre-structured rubric question shape.
//
// Records are produced upstream (the generation pipeline) and consumed once
// per render call. Nothing in this package fetches or persists anything.
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/brightsciences/lessonpress/internal/normalization"
)

// Subject enumerates the three content subject areas.
type Subject string

const (
	SubjectLifeScience       Subject = "life-science"
	SubjectEarthSpaceScience Subject = "earth-space-science"
	SubjectPhysicalScience   Subject = "physical-science"
)

var subjectNormalizer = normalization.NewNormalizer(map[string]Subject{
	"life-science":            SubjectLifeScience,
	"life science":            SubjectLifeScience,
	"earth-space-science":     SubjectEarthSpaceScience,
	"earth & space science":   SubjectEarthSpaceScience,
	"earth and space science": SubjectEarthSpaceScience,
	"physical-science":        SubjectPhysicalScience,
	"physical science":        SubjectPhysicalScience,
}, Subject(""))

// NormalizeSubject maps a raw subject string to its canonical Subject.
// Unknown values normalize to the empty Subject, which fails Validate.
func NormalizeSubject(raw string) Subject {
	return subjectNormalizer.Normalize(raw)
}

// Label returns the display form of the subject.
func (s Subject) Label() string {
	switch s {
	case SubjectLifeScience:
		return "Life Science"
	case SubjectEarthSpaceScience:
		return "Earth & Space Science"
	case SubjectPhysicalScience:
		return "Physical Science"
	}
	return string(s)
}

// GradeLevel enumerates the seven supported grade levels: kindergarten
// through grade five, plus the engineering-design variant.
type GradeLevel string

const (
	GradeK           GradeLevel = "K"
	Grade1           GradeLevel = "1"
	Grade2           GradeLevel = "2"
	Grade3           GradeLevel = "3"
	Grade4           GradeLevel = "4"
	Grade5           GradeLevel = "5"
	GradeEngineering GradeLevel = "engineering-design"
)

// GradeLevels lists every valid grade level in presentation order.
var GradeLevels = []GradeLevel{GradeK, Grade1, Grade2, Grade3, Grade4, Grade5, GradeEngineering}

var gradeNormalizer = normalization.NewNormalizer(map[string]GradeLevel{
	"k":                  GradeK,
	"kindergarten":       GradeK,
	"1":                  Grade1,
	"grade 1":            Grade1,
	"2":                  Grade2,
	"grade 2":            Grade2,
	"3":                  Grade3,
	"grade 3":            Grade3,
	"4":                  Grade4,
	"grade 4":            Grade4,
	"5":                  Grade5,
	"grade 5":            Grade5,
	"engineering-design": GradeEngineering,
	"engineering design": GradeEngineering,
}, GradeLevel(""))

// NormalizeGradeLevel maps a raw grade string to its canonical GradeLevel.
func NormalizeGradeLevel(raw string) GradeLevel {
	return gradeNormalizer.Normalize(raw)
}

// Label returns the display form of the grade level.
func (g GradeLevel) Label() string {
	switch g {
	case GradeK:
		return "Kindergarten"
	case GradeEngineering:
		return "Engineering Design"
	case Grade1, Grade2, Grade3, Grade4, Grade5:
		return "Grade " + string(g)
	}
	return string(g)
}

// GradeBand identifies the differentiated-instruction band a grade belongs to.
type GradeBand string

const (
	BandEarlier GradeBand = "K-2"
	BandLater   GradeBand = "3-5"
)

// Band returns the grade band for differentiated task selection. The
// engineering-design variant spans the full range; its documents carry both
// band variants, so it reports the later band as its default audience.
func (g GradeLevel) Band() GradeBand {
	switch g {
	case GradeK, Grade1, Grade2:
		return BandEarlier
	default:
		return BandLater
	}
}

// RubricLevels holds the four proficiency-level descriptors of one rubric
// row. Empty strings are valid (the table floors the row height); the fields
// themselves are required by the record contract.
type RubricLevels struct {
	Exceeds     string `json:"exceeds"`
	Meets       string `json:"meets"`
	Approaching string `json:"approaching"`
	Beginning   string `json:"beginning"`
}

// RubricQuestion is one pre-structured assessment question. Rubric questions
// arrive already structured from the generation pipeline; they are never
// parsed out of prose.
type RubricQuestion struct {
	Question    string       `json:"question"`
	BloomsLevel string       `json:"bloomsLevel"`
	DOKLevel    string       `json:"dokLevel"`
	Rubric      RubricLevels `json:"rubric"`
}

// Record is the immutable input to a render call.
type Record struct {
	Title      string     `json:"title"`
	Subject    Subject    `json:"subject"`
	GradeLevel GradeLevel `json:"gradeLevel"`
	Body       string     `json:"body"`

	// Optional asset references, resolved relative to the record file.
	ImagePath string `json:"imagePath,omitempty"`
	LogoPath  string `json:"logoPath,omitempty"`

	// Questions feed the rubric and exit-ticket templates. The rubric
	// template requires them; other templates ignore them.
	Questions []RubricQuestion `json:"questions,omitempty"`
}

// Validate checks the record against the input contract. It normalizes the
// subject and grade level in place so callers can accept loose spellings
// from hand-edited record files.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("record: title is required")
	}
	r.Subject = NormalizeSubject(string(r.Subject))
	if r.Subject == "" {
		return fmt.Errorf("record %q: unrecognized subject", r.Title)
	}
	r.GradeLevel = NormalizeGradeLevel(string(r.GradeLevel))
	if r.GradeLevel == "" {
		return fmt.Errorf("record %q: unrecognized grade level", r.Title)
	}
	if strings.TrimSpace(r.Body) == "" {
		return fmt.Errorf("record %q: body is required", r.Title)
	}
	return nil
}

// ValidateRubric checks the pre-structured rubric contract. A rubric render
// with no questions, or any question without text, is a caller-side contract
// violation and fails the whole render. Empty level descriptors are allowed.
func (r *Record) ValidateRubric() error {
	if len(r.Questions) == 0 {
		return fmt.Errorf("record %q: rubric render requires at least one question", r.Title)
	}
	for i, q := range r.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("record %q: rubric question %d has no question text", r.Title, i+1)
		}
	}
	return nil
}

// LoadRecord reads and validates a record from a JSON file.
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record file %s: %w", path, err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}
