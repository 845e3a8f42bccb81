package corpus

import (
	"strings"

	"github.com/pkg/errors"
)

// SubjectRule maps one year band of one subject onto a session/number range.
// A subject usually needs several rules because the exam reshuffled its
// session layout over the years; rules sharing an ID belong to one subject.
type SubjectRule struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	YearMin   int      `json:"yearMin"`
	YearMax   int      `json:"yearMax"`
	Sessions  []string `json:"sessions"`
	NumberMin int      `json:"numberMin"`
	NumberMax int      `json:"numberMax"`
}

// Subject is one resolved subject with its precomputed question count.
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DefaultSubjectRules covers the current exam layout. Datasets may carry
// their own table in the corpus file; this is the fallback when they do not.
func DefaultSubjectRules() []SubjectRule {
	return []SubjectRule{
		{ID: "operative", Name: "牙體復形學", YearMin: 102, YearMax: 118, Sessions: []string{"A"}, NumberMin: 1, NumberMax: 40},
		{ID: "endo", Name: "牙髓病學", YearMin: 102, YearMax: 118, Sessions: []string{"A"}, NumberMin: 41, NumberMax: 80},
		{ID: "perio", Name: "牙周病學", YearMin: 102, YearMax: 118, Sessions: []string{"B"}, NumberMin: 1, NumberMax: 40},
		{ID: "prostho", Name: "贋復學", YearMin: 102, YearMax: 118, Sessions: []string{"B"}, NumberMin: 41, NumberMax: 80},
		{ID: "oralsurg", Name: "口腔顎面外科學", YearMin: 102, YearMax: 118, Sessions: []string{"C"}, NumberMin: 1, NumberMax: 40},
		{ID: "patho", Name: "口腔病理學", YearMin: 102, YearMax: 118, Sessions: []string{"C"}, NumberMin: 41, NumberMax: 80},
		{ID: "pedo", Name: "兒童牙科學", YearMin: 102, YearMax: 118, Sessions: []string{"D"}, NumberMin: 1, NumberMax: 40},
		{ID: "ortho", Name: "齒顎矯正學", YearMin: 102, YearMax: 118, Sessions: []string{"D"}, NumberMin: 41, NumberMax: 80},
	}
}

// ApplySubjects validates the rule table and builds the subject index: one
// precompiled question list per subject id, in dataset order. Built once at
// load time; lookups afterwards never rescan the corpus.
func (c *Corpus) ApplySubjects(rules []SubjectRule) error {
	compiled := make([]SubjectRule, 0, len(rules))
	order := make([]string, 0, len(rules))
	names := make(map[string]string)
	for i, rule := range rules {
		rule.ID = strings.TrimSpace(rule.ID)
		if rule.ID == "" {
			return errors.Errorf("subject rule %d has empty id", i)
		}
		if rule.YearMin > rule.YearMax {
			return errors.Errorf("subject %q year range %d-%d is inverted", rule.ID, rule.YearMin, rule.YearMax)
		}
		if rule.NumberMin < 1 || rule.NumberMin > rule.NumberMax {
			return errors.Errorf("subject %q number range %d-%d is invalid", rule.ID, rule.NumberMin, rule.NumberMax)
		}
		if len(rule.Sessions) == 0 {
			return errors.Errorf("subject %q has no sessions", rule.ID)
		}
		for j, s := range rule.Sessions {
			s = strings.ToUpper(strings.TrimSpace(s))
			if len(s) != 1 {
				return errors.Errorf("subject %q has invalid session %q", rule.ID, rule.Sessions[j])
			}
			rule.Sessions[j] = s
		}
		if _, seen := names[rule.ID]; !seen {
			order = append(order, rule.ID)
			names[rule.ID] = strings.TrimSpace(rule.Name)
		}
		compiled = append(compiled, rule)
	}

	bySubject := make(map[string][]*Question, len(order))
	for _, q := range c.questions {
		for _, rule := range compiled {
			if matchSubjectRule(rule, q) {
				bySubject[rule.ID] = append(bySubject[rule.ID], q)
				break
			}
		}
	}

	subjects := make([]*Subject, 0, len(order))
	for _, id := range order {
		subjects = append(subjects, &Subject{ID: id, Name: names[id], Count: len(bySubject[id])})
	}
	c.subjects = subjects
	c.bySubject = bySubject
	return nil
}

func matchSubjectRule(rule SubjectRule, q *Question) bool {
	if q.Year < rule.YearMin || q.Year > rule.YearMax {
		return false
	}
	if q.Number < rule.NumberMin || q.Number > rule.NumberMax {
		return false
	}
	for _, s := range rule.Sessions {
		if q.Session == s {
			return true
		}
	}
	return false
}

// Subjects returns the subject list in rule-table order, with counts.
func (c *Corpus) Subjects() []*Subject {
	return c.subjects
}

// SubjectQuestions returns one subject's questions in dataset order. The
// second return is false when the id names no subject.
func (c *Corpus) SubjectQuestions(id string) ([]*Question, bool) {
	questions, ok := c.bySubject[strings.TrimSpace(id)]
	if !ok {
		for _, s := range c.subjects {
			if s.ID == strings.TrimSpace(id) {
				return nil, true
			}
		}
		return nil, false
	}
	return questions, true
}
