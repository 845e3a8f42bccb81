// Package rss publishes the daily practice pick as an RSS feed, so a feed
// reader can nag the user with one question every morning.
package rss

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/dentkao/dentkao/internal/profile"
	"github.com/dentkao/dentkao/server/corpus"
	"github.com/dentkao/dentkao/server/service/study"
	"github.com/dentkao/dentkao/server/timezone"
)

const maxFeedItems = 14

// RSSService serves the daily-pick feed.
type RSSService struct {
	Profile *profile.Profile
	Study   *study.Service
}

// NewRSSService creates an RSS service.
func NewRSSService(p *profile.Profile, studyService *study.Service) *RSSService {
	return &RSSService{
		Profile: p,
		Study:   studyService,
	}
}

// RegisterRoutes mounts the feed endpoint.
func (s *RSSService) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/explore/rss.xml", s.GetDailyPickFeed)
}

// GetDailyPickFeed returns the last two weeks of daily picks, newest first.
func (s *RSSService) GetDailyPickFeed(c echo.Context) error {
	loc := timezone.MustParse(s.Profile.Timezone)
	now := time.Now().In(loc)

	feed := &feeds.Feed{
		Title:       "每日一題",
		Link:        &feeds.Link{Href: s.Profile.InstanceURL},
		Description: "國考題庫每日練習",
		Created:     now,
	}

	for i := 0; i < maxFeedItems; i++ {
		day := timezone.StartOfDay(now, loc).AddDate(0, 0, -i)
		dateKey := timezone.DateKey(day, loc)
		q, err := s.Study.PickForDate(dateKey)
		if err != nil {
			break
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          fmt.Sprintf("%s/%s", dateKey, q.ID),
			Title:       fmt.Sprintf("%s 每日一題: %s", dateKey, q.ID),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/questions/%s", s.Profile.InstanceURL, q.ID)},
			Description: questionSummary(q),
			Created:     day,
		})
	}
	sort.SliceStable(feed.Items, func(i, j int) bool {
		return feed.Items[i].Created.After(feed.Items[j].Created)
	})

	rss, err := feed.ToRss()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate rss feed").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml", []byte(rss))
}

// questionSummary renders the question stem with its choices, answers held
// back so the feed stays a prompt rather than a spoiler.
func questionSummary(q *corpus.Question) string {
	summary := q.QuestionText
	keys := make([]string, 0, len(q.Choices))
	for key := range q.Choices {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		summary += fmt.Sprintf("\n(%s) %s", key, q.Choices[key])
	}
	return summary
}
