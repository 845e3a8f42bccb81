package v1

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dentkao/dentkao/plugin/filter"
	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/server/queryengine"
	"github.com/dentkao/dentkao/server/service/question"
	"github.com/dentkao/dentkao/server/service/study"
	"github.com/dentkao/dentkao/server/timezone"
)

type listQuestionsResponse struct {
	Total     int                `json:"total"`
	Questions []*corpus.Question `json:"questions"`
}

type searchResponse struct {
	Strategy  string                         `json:"strategy"`
	Decision  *queryengine.RouteDecision     `json:"decision"`
	Total     int                            `json:"total"`
	Questions []*corpus.Question             `json:"questions"`
	Results   []question.HighlightedQuestion `json:"results,omitempty"`
}

type dailyPickResponse struct {
	Date     string           `json:"date"`
	Question *corpus.Question `json:"question"`
}

// GetCorpusMetadata returns the dataset summary.
// GET /api/v1/corpus/metadata
func (s *APIV1Service) GetCorpusMetadata(c echo.Context) error {
	corp := s.Study.Corpus()
	return writeOK(c, map[string]any{
		"metadata": corp.Metadata(),
		"years":    corp.Years(),
		"sessions": corp.Sessions(),
	})
}

// ListQuestions lists questions matched by a filter. The filter is either a
// CEL expression in ?filter= or the individual query parameters; the CEL
// form wins when both are present. CEL-built specs skip identifier routing:
// a contains() argument that happens to look like an identifier stays a
// keyword and never shadows the structured predicates.
// GET /api/v1/questions
func (s *APIV1Service) ListQuestions(c echo.Context) error {
	spec, fromCEL, err := filterSpecFromRequest(c)
	if err != nil {
		return writeError(c, err)
	}

	engine := s.Study.Engine()
	questions := s.Study.Corpus().Questions()
	var result *queryengine.FilterResult
	if fromCEL {
		result = engine.FilterGeneral(questions, *spec)
	} else {
		result = engine.Filter(questions, *spec)
	}
	page, total := paginate(c, result.Questions)
	return writeOK(c, listQuestionsResponse{Total: total, Questions: page})
}

// GetQuestion returns one question by identifier.
// GET /api/v1/questions/:id
func (s *APIV1Service) GetQuestion(c echo.Context) error {
	id := c.Param("id")
	q := s.Study.Corpus().FindByID(id)
	if q == nil {
		return writeError(c, apierrors.NotFoundf("question %s not found", corpus.NormalizeID(id)))
	}
	return writeOK(c, q)
}

// GetDailyPick returns the question of the day.
// GET /api/v1/questions/daily
func (s *APIV1Service) GetDailyPick(c echo.Context) error {
	loc := timezone.MustParse(s.Profile.Timezone)
	q, dateKey, err := s.Study.DailyPick(loc)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, dailyPickResponse{Date: dateKey, Question: q})
}

// Search runs the full filter pipeline and reports which routing strategy
// served the query. Keyword hits come back with snippets and highlight
// positions; identifier hits are returned as-is.
// GET /api/v1/search
func (s *APIV1Service) Search(c echo.Context) error {
	spec, _, err := filterSpecFromRequest(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx := c.Request().Context()
	result := s.Study.Engine().Filter(s.Study.Corpus().Questions(), *spec)
	s.metrics.RecordSearch(result.Strategy)
	if text := strings.TrimSpace(spec.SearchText); text != "" {
		// History failures must not fail the search itself.
		_ = s.Study.RecordSearch(ctx, text)
	}

	questions, total := paginate(c, result.Questions)
	resp := searchResponse{
		Strategy:  result.Strategy,
		Decision:  result.Decision,
		Total:     total,
		Questions: questions,
	}
	if result.Strategy == queryengine.StrategyKeyword && spec.SearchText != "" {
		resp.Results = s.highlighter.HighlightAll(questions, spec.SearchText, nil)
	}
	return writeOK(c, resp)
}

// ResolveFeed resolves a tagged feed source into its question list.
// POST /api/v1/feed
func (s *APIV1Service) ResolveFeed(c echo.Context) error {
	source := study.FeedSource{}
	if err := c.Bind(&source); err != nil {
		return writeError(c, apierrors.InvalidArgument("malformed request body"))
	}
	questions, err := s.Study.ResolveFeed(source)
	if err != nil {
		return writeError(c, err)
	}
	page, total := paginate(c, questions)
	return writeOK(c, listQuestionsResponse{Total: total, Questions: page})
}

// filterSpecFromRequest builds a FilterSpec from either the CEL filter
// expression or the plain query parameters. The second return reports the
// CEL origin so callers can skip identifier routing for structured specs.
func filterSpecFromRequest(c echo.Context) (*queryengine.FilterSpec, bool, error) {
	if expression := c.QueryParam("filter"); expression != "" {
		spec, err := filter.Parse(expression)
		if err != nil {
			return nil, false, apierrors.InvalidArgument(err.Error())
		}
		if q := c.QueryParam("q"); q != "" {
			spec.SearchText = q
		}
		return spec, true, nil
	}

	spec := &queryengine.FilterSpec{SearchText: c.QueryParam("q")}
	if years := c.QueryParam("years"); years != "" {
		for _, part := range strings.Split(years, ",") {
			year, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, false, apierrors.InvalidArgumentf("invalid year %q", part)
			}
			spec.SelectedYears = append(spec.SelectedYears, year)
		}
	}
	if sessions := c.QueryParam("sessions"); sessions != "" {
		for _, part := range strings.Split(sessions, ",") {
			spec.Sessions = append(spec.Sessions, strings.TrimSpace(part))
		}
	}
	if core := c.QueryParam("coreOnly"); core != "" {
		coreOnly, err := strconv.ParseBool(core)
		if err != nil {
			return nil, false, apierrors.InvalidArgumentf("invalid coreOnly %q", core)
		}
		spec.RequireCoreTopicOnly = coreOnly
	}
	return spec, false, nil
}

// paginate applies optional ?limit= and ?offset= to a result list, returning
// the page and the pre-pagination total.
func paginate(c echo.Context, questions []*corpus.Question) ([]*corpus.Question, int) {
	total := len(questions)
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset > 0 {
		if offset > total {
			offset = total
		}
		questions = questions[offset:]
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit > 0 && limit < len(questions) {
		questions = questions[:limit]
	}
	return questions, total
}
