package study

import (
	"context"
	"strings"

	"github.com/dentkao/dentkao/internal/util"
	"github.com/dentkao/dentkao/server/corpus"
	apierrors "github.com/dentkao/dentkao/server/internal/errors"
	"github.com/dentkao/dentkao/store"
)

// Folder is a user-named collection of question ids.
type Folder struct {
	UID         string   `json:"uid"`
	Name        string   `json:"name"`
	QuestionIDs []string `json:"questionIds"`
	CreatedTs   int64    `json:"createdTs"`
	UpdatedTs   int64    `json:"updatedTs"`
}

func (f *Folder) contains(questionID string) bool {
	for _, id := range f.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// CreateFolder creates an empty folder. Names must be non-blank and unique.
func (s *Service) CreateFolder(ctx context.Context, name string) (*Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierrors.InvalidArgument("folder name must not be blank")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, folder := range s.folders {
		if folder.Name == name {
			return nil, apierrors.AlreadyExists("a folder with this name already exists")
		}
	}

	now := s.clock.Now().Unix()
	folder := &Folder{
		UID:         util.GenUID(),
		Name:        name,
		QuestionIDs: []string{},
		CreatedTs:   now,
		UpdatedTs:   now,
	}
	s.folders = append(s.folders, folder)

	if err := s.saveCollection(ctx, store.StateKeyFolders, s.folders); err != nil {
		return nil, err
	}
	return folder, nil
}

// RenameFolder renames an existing folder.
func (s *Service) RenameFolder(ctx context.Context, uid, name string) (*Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierrors.InvalidArgument("folder name must not be blank")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	folder := s.findFolderLocked(uid)
	if folder == nil {
		return nil, apierrors.NotFoundf("folder %s not found", uid)
	}
	for _, other := range s.folders {
		if other != folder && other.Name == name {
			return nil, apierrors.AlreadyExists("a folder with this name already exists")
		}
	}

	folder.Name = name
	folder.UpdatedTs = s.clock.Now().Unix()

	if err := s.saveCollection(ctx, store.StateKeyFolders, s.folders); err != nil {
		return nil, err
	}
	return folder, nil
}

// DeleteFolder removes a folder and its membership list.
func (s *Service) DeleteFolder(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]*Folder, 0, len(s.folders))
	for _, folder := range s.folders {
		if folder.UID == uid {
			continue
		}
		next = append(next, folder)
	}
	if len(next) == len(s.folders) {
		return apierrors.NotFoundf("folder %s not found", uid)
	}
	s.folders = next

	return s.saveCollection(ctx, store.StateKeyFolders, s.folders)
}

// AddToFolder adds a question to a folder. Adding an already-present question
// is a no-op, not an error.
func (s *Service) AddToFolder(ctx context.Context, uid, questionID string) (*Folder, error) {
	id := corpus.NormalizeID(questionID)
	if s.corpus.FindByID(id) == nil {
		return nil, apierrors.NotFoundf("question %s not found", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	folder := s.findFolderLocked(uid)
	if folder == nil {
		return nil, apierrors.NotFoundf("folder %s not found", uid)
	}
	if folder.contains(id) {
		return folder, nil
	}

	folder.QuestionIDs = append(folder.QuestionIDs, id)
	folder.UpdatedTs = s.clock.Now().Unix()

	if err := s.saveCollection(ctx, store.StateKeyFolders, s.folders); err != nil {
		return nil, err
	}
	return folder, nil
}

// RemoveFromFolder removes a question from a folder.
func (s *Service) RemoveFromFolder(ctx context.Context, uid, questionID string) (*Folder, error) {
	id := corpus.NormalizeID(questionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	folder := s.findFolderLocked(uid)
	if folder == nil {
		return nil, apierrors.NotFoundf("folder %s not found", uid)
	}

	next := make([]string, 0, len(folder.QuestionIDs))
	for _, existing := range folder.QuestionIDs {
		if existing == id {
			continue
		}
		next = append(next, existing)
	}
	if len(next) == len(folder.QuestionIDs) {
		return nil, apierrors.NotFoundf("question %s is not in folder %s", id, uid)
	}
	folder.QuestionIDs = next
	folder.UpdatedTs = s.clock.Now().Unix()

	if err := s.saveCollection(ctx, store.StateKeyFolders, s.folders); err != nil {
		return nil, err
	}
	return folder, nil
}

// GetFolder returns one folder by uid.
func (s *Service) GetFolder(uid string) (*Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder := s.findFolderLocked(uid)
	if folder == nil {
		return nil, apierrors.NotFoundf("folder %s not found", uid)
	}
	return folder, nil
}

// ListFolders returns all folders in creation order.
func (s *Service) ListFolders() []*Folder {
	s.mu.Lock()
	defer s.mu.Unlock()

	folders := make([]*Folder, len(s.folders))
	copy(folders, s.folders)
	return folders
}

// FolderQuestions resolves a folder's question ids against the corpus.
func (s *Service) FolderQuestions(uid string) ([]*corpus.Question, error) {
	folder, err := s.GetFolder(uid)
	if err != nil {
		return nil, err
	}
	questions := make([]*corpus.Question, 0, len(folder.QuestionIDs))
	for _, id := range folder.QuestionIDs {
		if q := s.corpus.FindByID(id); q != nil {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func (s *Service) findFolderLocked(uid string) *Folder {
	for _, folder := range s.folders {
		if folder.UID == uid {
			return folder
		}
	}
	return nil
}
