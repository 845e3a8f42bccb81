package queryengine

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadCoreTopicRules 測試從外部檔案載入核心題範圍表
func TestLoadCoreTopicRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core_topic.json")
	content := `[
		{"yearMin": 102, "yearMax": 109, "sessions": ["A", "B"], "numberMin": 1, "numberMax": 80},
		{"yearMin": 110, "yearMax": 118, "sessions": ["A", "C"], "numberMin": 1, "numberMax": 50}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rules, err := LoadCoreTopicRules(path)
	if err != nil {
		t.Fatalf("LoadCoreTopicRules failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].YearMax != 109 || rules[1].NumberMax != 50 {
		t.Errorf("rules parsed incorrectly: %+v", rules)
	}

	config := DefaultConfig()
	config.CoreTopic = rules
	if err := ValidateConfig(config); err != nil {
		t.Errorf("loaded rules failed validation: %v", err)
	}
}

// TestLoadCoreTopicRulesErrors 測試載入失敗情形
func TestLoadCoreTopicRulesErrors(t *testing.T) {
	if _, err := LoadCoreTopicRules(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadCoreTopicRules(path); err == nil {
		t.Error("malformed file should fail")
	}
}

// TestApplyConfig 測試執行期設定更新
func TestApplyConfig(t *testing.T) {
	engine := NewEngine()

	updated := DefaultConfig()
	updated.Data = DataConfig{YearMin: 102, YearMax: 120}
	if err := engine.ApplyConfig(updated); err != nil {
		t.Fatalf("ApplyConfig failed: %v", err)
	}
	if got := engine.GetConfig().Data.YearMax; got != 120 {
		t.Errorf("Data.YearMax = %d, want 120", got)
	}

	// 展開上界應隨新設定移動
	partial := engine.ParsePartial("12")
	if partial == nil || len(partial.Years) != 1 || partial.Years[0] != 120 {
		t.Errorf("ParsePartial(\"12\") = %+v, want [120]", partial)
	}

	// 無效設定應被拒絕且不影響現行設定
	bad := DefaultConfig()
	bad.Data.YearMin = 50
	if err := engine.ApplyConfig(bad); err == nil {
		t.Error("ApplyConfig accepted an invalid config")
	}
	if got := engine.GetConfig().Data.YearMax; got != 120 {
		t.Errorf("config changed after failed apply: YearMax = %d", got)
	}
}
