package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dentkao/dentkao/server/corpus"
)

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0644))
}

// TestMerge 測試合併兩個梯次檔與圖片對照表
func TestMerge(t *testing.T) {
	dir := t.TempDir()
	sourceDir := filepath.Join(dir, "source")
	require.NoError(t, os.Mkdir(sourceDir, 0755))

	writeJSON(t, filepath.Join(sourceDir, "112B.json"), []*corpus.Question{
		{ID: "112B001", Year: 112, Session: "B", Number: 1, QuestionText: "窩洞分類", Choices: map[string]string{"a": "甲", "b": "乙"}, ChoiceCount: 1, Answer: "a"},
		{ID: "112B002", Year: 112, Session: "B", Number: 2, QuestionText: "齲蝕進程", Choices: map[string]string{"a": "甲", "b": "乙"}, ChoiceCount: 1, Answer: "b"},
	})
	writeJSON(t, filepath.Join(sourceDir, "113A.json"), []*corpus.Question{
		{ID: "113A001", Year: 113, Session: "A", Number: 1, QuestionText: "根管充填", Choices: map[string]string{"a": "甲", "b": "乙"}, ChoiceCount: 1, Answer: "a"},
	})
	imageMapPath := filepath.Join(dir, "images.json")
	writeJSON(t, imageMapPath, map[string][]string{
		"112B002": {"112B002_1.png"},
	})

	outPath := filepath.Join(dir, "corpus.json")
	result, err := Merge(sourceDir, imageMapPath, outPath)
	require.NoError(t, err)
	require.Equal(t, 2, result.SourceFiles)
	require.Equal(t, 3, result.Metadata.TotalCount)
	require.Equal(t, 1, result.Metadata.WithImagesCount)
	require.Equal(t, 112, result.Metadata.YearRange.Min)
	require.Equal(t, 113, result.Metadata.YearRange.Max)

	// 輸出檔可被 corpus.Load 直接載入
	merged, err := corpus.Load(outPath)
	require.NoError(t, err)
	require.Equal(t, 3, merged.Len())
	q := merged.FindByID("112b002")
	require.NotNil(t, q)
	require.True(t, q.HasFigure)
	require.Equal(t, []string{"112B002_1.png"}, q.Images)
}

// TestMergeDuplicateID 測試跨檔重複編號被拒絕
func TestMergeDuplicateID(t *testing.T) {
	dir := t.TempDir()
	sourceDir := filepath.Join(dir, "source")
	require.NoError(t, os.Mkdir(sourceDir, 0755))

	question := []*corpus.Question{
		{ID: "112B001", Year: 112, Session: "B", Number: 1, QuestionText: "重複題", Choices: map[string]string{"a": "甲"}, ChoiceCount: 1, Answer: "a"},
	}
	writeJSON(t, filepath.Join(sourceDir, "a.json"), question)
	writeJSON(t, filepath.Join(sourceDir, "b.json"), question)

	_, err := Merge(sourceDir, "", filepath.Join(dir, "corpus.json"))
	require.Error(t, err)
}

// TestMergeUnknownImageRef 測試圖片對照表指向不存在題目時回報錯誤
func TestMergeUnknownImageRef(t *testing.T) {
	dir := t.TempDir()
	sourceDir := filepath.Join(dir, "source")
	require.NoError(t, os.Mkdir(sourceDir, 0755))

	writeJSON(t, filepath.Join(sourceDir, "112B.json"), []*corpus.Question{
		{ID: "112B001", Year: 112, Session: "B", Number: 1, QuestionText: "窩洞分類", Choices: map[string]string{"a": "甲"}, ChoiceCount: 1, Answer: "a"},
	})
	imageMapPath := filepath.Join(dir, "images.json")
	writeJSON(t, imageMapPath, map[string][]string{"999Z999": {"x.png"}})

	_, err := Merge(sourceDir, imageMapPath, filepath.Join(dir, "corpus.json"))
	require.Error(t, err)
}

// TestMergeEmptySourceDir 測試空來源目錄
func TestMergeEmptySourceDir(t *testing.T) {
	dir := t.TempDir()
	sourceDir := filepath.Join(dir, "source")
	require.NoError(t, os.Mkdir(sourceDir, 0755))

	_, err := Merge(sourceDir, "", filepath.Join(dir, "corpus.json"))
	require.Error(t, err)
}
