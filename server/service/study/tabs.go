package study

import (
	"context"
	"strings"

	"github.com/dentkao/dentkao/internal/util"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/server/queryengine"
	"github.com/dentkao/dentkao/store"
)

// CustomTab is a saved filter specification shown as a tab in the client.
type CustomTab struct {
	UID       string                 `json:"uid"`
	Name      string                 `json:"name"`
	Spec      queryengine.FilterSpec `json:"spec"`
	CreatedTs int64                  `json:"createdTs"`
	UpdatedTs int64                  `json:"updatedTs"`
}

// CreateTab saves a filter specification under a tab name.
func (s *Service) CreateTab(ctx context.Context, name string, spec queryengine.FilterSpec) (*CustomTab, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierrors.InvalidArgument("tab name must not be blank")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tab := range s.tabs {
		if tab.Name == name {
			return nil, apierrors.AlreadyExists("a tab with this name already exists")
		}
	}

	now := s.clock.Now().Unix()
	tab := &CustomTab{
		UID:       util.GenUID(),
		Name:      name,
		Spec:      spec,
		CreatedTs: now,
		UpdatedTs: now,
	}
	s.tabs = append(s.tabs, tab)

	if err := s.saveCollection(ctx, store.StateKeyCustomTabs, s.tabs); err != nil {
		return nil, err
	}
	return tab, nil
}

// UpdateTab replaces a tab's name and filter specification.
func (s *Service) UpdateTab(ctx context.Context, uid, name string, spec queryengine.FilterSpec) (*CustomTab, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierrors.InvalidArgument("tab name must not be blank")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tab := s.findTabLocked(uid)
	if tab == nil {
		return nil, apierrors.NotFoundf("tab %s not found", uid)
	}
	for _, other := range s.tabs {
		if other != tab && other.Name == name {
			return nil, apierrors.AlreadyExists("a tab with this name already exists")
		}
	}

	tab.Name = name
	tab.Spec = spec
	tab.UpdatedTs = s.clock.Now().Unix()

	if err := s.saveCollection(ctx, store.StateKeyCustomTabs, s.tabs); err != nil {
		return nil, err
	}
	return tab, nil
}

// DeleteTab removes a tab.
func (s *Service) DeleteTab(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]*CustomTab, 0, len(s.tabs))
	for _, tab := range s.tabs {
		if tab.UID == uid {
			continue
		}
		next = append(next, tab)
	}
	if len(next) == len(s.tabs) {
		return apierrors.NotFoundf("tab %s not found", uid)
	}
	s.tabs = next

	return s.saveCollection(ctx, store.StateKeyCustomTabs, s.tabs)
}

// GetTab returns one tab by uid.
func (s *Service) GetTab(uid string) (*CustomTab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tab := s.findTabLocked(uid)
	if tab == nil {
		return nil, apierrors.NotFoundf("tab %s not found", uid)
	}
	return tab, nil
}

// ListTabs returns all tabs in creation order.
func (s *Service) ListTabs() []*CustomTab {
	s.mu.Lock()
	defer s.mu.Unlock()

	tabs := make([]*CustomTab, len(s.tabs))
	copy(tabs, s.tabs)
	return tabs
}

func (s *Service) findTabLocked(uid string) *CustomTab {
	for _, tab := range s.tabs {
		if tab.UID == uid {
			return tab
		}
	}
	return nil
}
