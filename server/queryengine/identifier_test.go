package queryengine

import (
	"testing"
)

// TestParseComplete 測試完整識別碼解析
func TestParseComplete(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name        string
		input       string
		wantYear    int
		wantSession string
		wantNumber  int
		wantMatch   bool
	}{
		// 三種自然分隔風格
		{"連字號分隔", "112-B-48", 112, "B", 48, true},
		{"無分隔", "112B48", 112, "B", 48, true},
		{"空白分隔", "112 B 48", 112, "B", 48, true},
		{"底線分隔", "112_b_48", 112, "B", 48, true},
		{"混合分隔", "112- B_48", 112, "B", 48, true},
		{"前後空白", "  112B48  ", 112, "B", 48, true},
		{"小寫梯次", "118a1", 118, "A", 1, true},
		{"補零題號", "118A001", 118, "A", 1, true},
		{"兩位數年度", "99a5", 99, "A", 5, true},
		// 缺少任一成分都不匹配
		{"缺題號", "112B", 0, "", 0, false},
		{"缺梯次", "11248", 0, "", 0, false},
		{"只有年度", "112", 0, "", 0, false},
		{"空字串", "", 0, "", 0, false},
		// 多餘字元不匹配
		{"尾端雜訊", "112B48x", 0, "", 0, false},
		{"前端雜訊", "x112B48", 0, "", 0, false},
		{"題號過長", "112B4888", 0, "", 0, false},
		{"年度過長", "1123B48", 0, "", 0, false},
		{"梯次超出範圍", "112E48", 0, "", 0, false},
		{"純關鍵字", "齲蝕", 0, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ParseComplete(tt.input)
			if !tt.wantMatch {
				if got != nil {
					t.Errorf("ParseComplete(%q) = %+v, want no match", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseComplete(%q) = no match, want %d%s%d", tt.input, tt.wantYear, tt.wantSession, tt.wantNumber)
			}
			if got.Year != tt.wantYear || got.Session != tt.wantSession || got.Number != tt.wantNumber {
				t.Errorf("ParseComplete(%q) = %+v, want {%d %s %d}", tt.input, got, tt.wantYear, tt.wantSession, tt.wantNumber)
			}
		})
	}
}

// TestParsePartial 測試部分識別碼解析
func TestParsePartial(t *testing.T) {
	engine := NewEngine() // 題庫範圍預設 102-118

	tests := []struct {
		name        string
		input       string
		wantYears   []int
		wantSession string
		wantMatch   bool
	}{
		// 形態 1: 年度 + 梯次
		{"年度加梯次", "112B", []int{112}, "B", true},
		{"小寫梯次", "112b", []int{112}, "B", true},
		{"分隔後梯次", "112-b", []int{112}, "B", true},
		{"尾端分隔符", "112B-", []int{112}, "B", true},
		{"尾端空白分隔", "112 B ", []int{112}, "B", true},
		{"年度超界加梯次", "99A", nil, "", false},
		{"年度過大加梯次", "131A", nil, "", false},
		// 形態 2: 三位數年度
		{"三位數年度", "112", []int{112}, "", true},
		{"文法下界", "100", []int{100}, "", true},
		{"文法上界", "130", []int{130}, "", true},
		{"三位數超界", "099", nil, "", false},
		{"三位數過大", "131", nil, "", false},
		// 形態 3: 兩位數年代前綴
		{"前綴 11", "11", []int{110, 111, 112, 113, 114, 115, 116, 117, 118}, "", true},
		{"前綴 10", "10", []int{102, 103, 104, 105, 106, 107, 108, 109}, "", true},
		{"前綴 12 超出題庫", "12", nil, "", false},
		{"前綴 99 無意義", "99", nil, "", false},
		{"前綴 14 無意義", "14", nil, "", false},
		// 其他輸入不匹配
		{"一位數", "1", nil, "", false},
		{"四位數", "1123", nil, "", false},
		{"空字串", "", nil, "", false},
		{"關鍵字", "窩洞", nil, "", false},
		{"完整識別碼不歸部分解析", "112B48", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ParsePartial(tt.input)
			if !tt.wantMatch {
				if got != nil {
					t.Errorf("ParsePartial(%q) = %+v, want no match", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParsePartial(%q) = no match, want years %v", tt.input, tt.wantYears)
			}
			if len(got.Years) != len(tt.wantYears) {
				t.Fatalf("ParsePartial(%q) years = %v, want %v", tt.input, got.Years, tt.wantYears)
			}
			for i, y := range tt.wantYears {
				if got.Years[i] != y {
					t.Errorf("ParsePartial(%q) years[%d] = %d, want %d", tt.input, i, got.Years[i], y)
				}
			}
			if got.Session != tt.wantSession {
				t.Errorf("ParsePartial(%q) session = %q, want %q", tt.input, got.Session, tt.wantSession)
			}
		})
	}
}

// TestParsePartialCustomDataRange 測試題庫範圍設定對年代展開的影響
func TestParsePartialCustomDataRange(t *testing.T) {
	config := DefaultConfig()
	config.Data = DataConfig{YearMin: 105, YearMax: 112}
	engine, err := NewEngineWithConfig(config)
	if err != nil {
		t.Fatalf("NewEngineWithConfig failed: %v", err)
	}

	got := engine.ParsePartial("11")
	want := []int{110, 111, 112}
	if got == nil || len(got.Years) != len(want) {
		t.Fatalf("ParsePartial(\"11\") = %+v, want years %v", got, want)
	}
	for i, y := range want {
		if got.Years[i] != y {
			t.Errorf("years[%d] = %d, want %d", i, got.Years[i], y)
		}
	}

	// 展開後全數落在題庫範圍外時視為不匹配
	if got := engine.ParsePartial("13"); got != nil {
		t.Errorf("ParsePartial(\"13\") = %+v, want no match", got)
	}
}
