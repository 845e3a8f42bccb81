package study

import (
	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/server/queryengine"
)

// FeedSourceType tags the variant of a feed source.
type FeedSourceType string

const (
	// FeedSourceKeyword feeds from a free-text search.
	FeedSourceKeyword FeedSourceType = "KEYWORD"
	// FeedSourceFolder feeds from a folder's membership list.
	FeedSourceFolder FeedSourceType = "FOLDER"
	// FeedSourceTab feeds from a saved tab's filter specification.
	FeedSourceTab FeedSourceType = "TAB"
	// FeedSourceSubject feeds from a subject's precomputed question set.
	FeedSourceSubject FeedSourceType = "SUBJECT"
)

// FeedSource selects where a question feed comes from. Exactly one payload
// field is meaningful, keyed by Type.
type FeedSource struct {
	Type      FeedSourceType `json:"type"`
	Keyword   string         `json:"keyword,omitempty"`
	FolderUID string         `json:"folderUid,omitempty"`
	TabUID    string         `json:"tabUid,omitempty"`
	SubjectID string         `json:"subjectId,omitempty"`
}

// ResolveFeed turns a feed source into its question list. Dispatch is an
// exhaustive switch over the variant tag; an unknown tag is an invalid
// argument, never a silent fallback.
func (s *Service) ResolveFeed(source FeedSource) ([]*corpus.Question, error) {
	switch source.Type {
	case FeedSourceKeyword:
		result := s.engine.Filter(s.corpus.Questions(), queryengine.FilterSpec{SearchText: source.Keyword})
		return result.Questions, nil
	case FeedSourceFolder:
		return s.FolderQuestions(source.FolderUID)
	case FeedSourceTab:
		tab, err := s.GetTab(source.TabUID)
		if err != nil {
			return nil, err
		}
		result := s.engine.Filter(s.corpus.Questions(), tab.Spec)
		return result.Questions, nil
	case FeedSourceSubject:
		questions, ok := s.corpus.SubjectQuestions(source.SubjectID)
		if !ok {
			return nil, apierrors.NotFoundf("subject %q not found", source.SubjectID)
		}
		return questions, nil
	default:
		return nil, apierrors.InvalidArgumentf("unknown feed source type %q", source.Type)
	}
}
