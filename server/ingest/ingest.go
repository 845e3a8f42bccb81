// Package ingest merges per-sitting question files and the image-mapping
// table into the consolidated corpus dataset the server loads at startup.
//
// Source layout: one JSON file per exam sitting (e.g. 112B.json) holding the
// sitting's question list, plus an optional images.json mapping question ids
// to figure file names.
package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/dentkao/dentkao/server/corpus"
)

// Result summarizes one ingest run.
type Result struct {
	SourceFiles int             `json:"sourceFiles"`
	Metadata    corpus.Metadata `json:"metadata"`
}

// Merge reads every *.json sitting file under sourceDir, applies the image
// mapping, and writes the consolidated dataset to outPath. imageMapPath may
// be empty when the corpus carries no figures.
func Merge(sourceDir, imageMapPath, outPath string) (*Result, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read source dir %q", sourceDir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, errors.Errorf("no sitting files found under %q", sourceDir)
	}
	// Sitting files are named year+session, lexical order is corpus order.
	sort.Strings(names)

	var questions []*corpus.Question
	for _, name := range names {
		sitting, err := readSittingFile(filepath.Join(sourceDir, name))
		if err != nil {
			return nil, err
		}
		questions = append(questions, sitting...)
	}

	if imageMapPath != "" {
		if err := applyImageMap(questions, imageMapPath); err != nil {
			return nil, err
		}
	}

	// Index once to validate ids, sessions and uniqueness before writing.
	merged, err := corpus.New(questions, corpus.Metadata{})
	if err != nil {
		return nil, errors.Wrap(err, "merged dataset is invalid")
	}

	doc := struct {
		Metadata  corpus.Metadata    `json:"metadata"`
		Questions []*corpus.Question `json:"questions"`
	}{
		Metadata:  merged.Metadata(),
		Questions: merged.Questions(),
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode dataset")
	}
	if err := os.WriteFile(outPath, raw, 0644); err != nil {
		return nil, errors.Wrapf(err, "failed to write dataset %q", outPath)
	}

	return &Result{
		SourceFiles: len(names),
		Metadata:    merged.Metadata(),
	}, nil
}

func readSittingFile(path string) ([]*corpus.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sitting file %q", path)
	}
	var questions []*corpus.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, errors.Wrapf(err, "failed to parse sitting file %q", path)
	}
	return questions, nil
}

// applyImageMap attaches figure file names to their questions. Entries for
// unknown ids are reported rather than dropped silently; a stale mapping
// usually means a renamed sitting file.
func applyImageMap(questions []*corpus.Question, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read image map %q", path)
	}
	imageMap := map[string][]string{}
	if err := json.Unmarshal(raw, &imageMap); err != nil {
		return errors.Wrapf(err, "failed to parse image map %q", path)
	}

	byID := make(map[string]*corpus.Question, len(questions))
	for _, q := range questions {
		byID[corpus.NormalizeID(q.ID)] = q
	}
	for id, images := range imageMap {
		q, ok := byID[corpus.NormalizeID(id)]
		if !ok {
			return errors.Errorf("image map references unknown question %q", id)
		}
		q.Images = append([]string{}, images...)
		q.HasFigure = len(q.Images) > 0
	}
	return nil
}
