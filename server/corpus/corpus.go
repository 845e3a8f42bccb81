// Package corpus loads and indexes the consolidated past-exam dataset.
//
// The dataset is produced offline by the ingest pipeline: one JSON document
// holding every question of every exam sitting plus summary metadata. At
// runtime the corpus is immutable; all services share one instance.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Question is one exam question as emitted by the ingest pipeline.
//
// The id decomposes as year+session+number, e.g. "112B048". Choice keys are
// lowercase letters a-e; the answer is empty, a letter set, a 5-letter
// permutation for ordering questions, or a numeric string for calculation
// questions.
type Question struct {
	ID           string            `json:"id"`
	Year         int               `json:"year"`
	Session      string            `json:"session"`
	Number       int               `json:"number"`
	QuestionText string            `json:"questionText"`
	Choices      map[string]string `json:"choices"`
	ChoiceCount  int               `json:"choiceCount"`
	Answer       string            `json:"answer"`
	HasFigure    bool              `json:"hasFigure"`
	Images       []string          `json:"images,omitempty"`
	IsExcluded   bool              `json:"isExcluded,omitempty"`
}

// YearRange is the inclusive span of exam years present in the dataset.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Metadata summarizes the dataset for clients and for the partial-identifier
// year bounds.
type Metadata struct {
	TotalCount      int       `json:"totalCount"`
	WithImagesCount int       `json:"withImagesCount"`
	YearRange       YearRange `json:"yearRange"`
}

// dataset is the on-disk document shape.
type dataset struct {
	Metadata  Metadata      `json:"metadata"`
	Subjects  []SubjectRule `json:"subjects,omitempty"`
	Questions []*Question   `json:"questions"`
}

// Corpus is the immutable in-memory question collection.
type Corpus struct {
	questions []*Question
	byID      map[string]*Question
	byYear    map[int][]*Question
	subjects  []*Subject
	bySubject map[string][]*Question
	metadata  Metadata
}

// FormatID builds the canonical identifier for a (year, session, number)
// triple, zero-padding the number to three digits.
func FormatID(year int, session string, number int) string {
	return fmt.Sprintf("%d%s%03d", year, strings.ToUpper(session), number)
}

// NormalizeID canonicalizes an identifier for case-insensitive lookup.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Load reads and indexes a consolidated dataset file.
func Load(path string) (*Corpus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read corpus file %q", path)
	}
	var ds dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, errors.Wrapf(err, "failed to parse corpus file %q", path)
	}
	c, err := New(ds.Questions, ds.Metadata)
	if err != nil {
		return nil, err
	}
	rules := ds.Subjects
	if len(rules) == 0 {
		rules = DefaultSubjectRules()
	}
	if err := c.ApplySubjects(rules); err != nil {
		return nil, errors.Wrapf(err, "invalid subject table in corpus file %q", path)
	}
	return c, nil
}

// New indexes the given questions. A zero-valued metadata is recomputed from
// the questions themselves so hand-built datasets stay usable.
func New(questions []*Question, metadata Metadata) (*Corpus, error) {
	c := &Corpus{
		questions: questions,
		byID:      make(map[string]*Question, len(questions)),
		byYear:    make(map[int][]*Question),
		metadata:  metadata,
	}
	for _, q := range questions {
		if q == nil {
			return nil, errors.New("corpus contains a nil question")
		}
		q.Session = strings.ToUpper(strings.TrimSpace(q.Session))
		if len(q.Session) != 1 {
			return nil, errors.Errorf("question %q has invalid session %q", q.ID, q.Session)
		}
		key := NormalizeID(q.ID)
		if key == "" {
			return nil, errors.Errorf("question with year %d number %d has empty id", q.Year, q.Number)
		}
		if _, ok := c.byID[key]; ok {
			return nil, errors.Errorf("duplicate question id %q", q.ID)
		}
		c.byID[key] = q
		c.byYear[q.Year] = append(c.byYear[q.Year], q)
	}
	if c.metadata.TotalCount == 0 {
		c.metadata = computeMetadata(questions)
	}
	return c, nil
}

func computeMetadata(questions []*Question) Metadata {
	md := Metadata{TotalCount: len(questions)}
	for i, q := range questions {
		if q.HasFigure || len(q.Images) > 0 {
			md.WithImagesCount++
		}
		if i == 0 || q.Year < md.YearRange.Min {
			md.YearRange.Min = q.Year
		}
		if i == 0 || q.Year > md.YearRange.Max {
			md.YearRange.Max = q.Year
		}
	}
	return md
}

// Questions returns all questions in dataset order. Callers must not mutate
// the returned slice or its elements.
func (c *Corpus) Questions() []*Question {
	return c.questions
}

// Len returns the number of questions.
func (c *Corpus) Len() int {
	return len(c.questions)
}

// Metadata returns the dataset summary.
func (c *Corpus) Metadata() Metadata {
	return c.metadata
}

// FindByID resolves an identifier case-insensitively. Returns nil when the
// id names no question.
func (c *Corpus) FindByID(id string) *Question {
	return c.byID[NormalizeID(id)]
}

// FindByTriple resolves a (year, session, number) triple. Returns nil when
// no such question exists.
func (c *Corpus) FindByTriple(year int, session string, number int) *Question {
	return c.byID[FormatID(year, session, number)]
}

// QuestionsByYear returns the questions of one exam year in dataset order.
func (c *Corpus) QuestionsByYear(year int) []*Question {
	return c.byYear[year]
}

// Years returns the distinct exam years in ascending order.
func (c *Corpus) Years() []int {
	years := make([]int, 0, len(c.byYear))
	for y := range c.byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Sessions returns the distinct session codes in ascending order.
func (c *Corpus) Sessions() []string {
	seen := make(map[string]bool)
	for _, q := range c.questions {
		seen[q.Session] = true
	}
	sessions := make([]string, 0, len(seen))
	for s := range seen {
		sessions = append(sessions, s)
	}
	sort.Strings(sessions)
	return sessions
}
