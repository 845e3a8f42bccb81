package queryengine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dentkao/dentkao/server/corpus"
)

// 路由策略名稱，依優先序由高到低
const (
	// StrategyCompleteIdentifier 完整識別碼直達單題
	StrategyCompleteIdentifier = "complete_identifier"
	// StrategyExactID 搜尋文字恰好等於某題編號
	StrategyExactID = "exact_id"
	// StrategyPartialIdentifier 部分識別碼展開為年度/梯次瀏覽
	StrategyPartialIdentifier = "partial_identifier"
	// StrategyKeyword 一般條件過濾（核心題/年度/梯次/關鍵字）
	StrategyKeyword = "keyword"
)

// Engine 查詢引擎
// 先對搜尋文字做識別碼路由，命中任一高優先策略時其餘過濾條件一律忽略；
// 全部落空才執行一般條件過濾。
type Engine struct {
	config      *Config
	configMutex sync.RWMutex

	// 依設定編譯後的核心題範圍表
	coreTopic []compiledCoreTopicRule
}

// FilterSpec 過濾條件
// 空集合語意為「不限制」而非「不匹配」；四個欄位全空等於恆真過濾。
type FilterSpec struct {
	SearchText           string   `json:"searchText"`
	SelectedYears        []int    `json:"selectedYears,omitempty"`
	Sessions             []string `json:"sessions,omitempty"`
	RequireCoreTopicOnly bool     `json:"requireCoreTopicOnly,omitempty"`
}

// RouteDecision 路由決策
type RouteDecision struct {
	Strategy string              `json:"strategy"`
	Complete *CompleteIdentifier `json:"complete,omitempty"`
	Partial  *PartialIdentifier  `json:"partial,omitempty"`
	ExactID  string              `json:"exactId,omitempty"`
	Keywords []string            `json:"keywords,omitempty"`
}

// FilterResult 過濾結果，保留輸入順序
type FilterResult struct {
	Strategy  string             `json:"strategy"`
	Decision  *RouteDecision     `json:"decision"`
	Questions []*corpus.Question `json:"questions"`
}

type compiledCoreTopicRule struct {
	yearMin, yearMax     int
	sessions             map[string]bool
	numberMin, numberMax int
}

// NewEngine 以預設設定建立查詢引擎
func NewEngine() *Engine {
	engine, err := NewEngineWithConfig(DefaultConfig())
	if err != nil {
		// DefaultConfig 不可能驗證失敗
		panic(err)
	}
	return engine
}

// NewEngineWithConfig 以指定設定建立查詢引擎
func NewEngineWithConfig(config *Config) (*Engine, error) {
	e := &Engine{}
	if err := e.ApplyConfig(config); err != nil {
		return nil, err
	}
	return e, nil
}

func compileCoreTopicRules(rules []CoreTopicRule) []compiledCoreTopicRule {
	compiled := make([]compiledCoreTopicRule, 0, len(rules))
	for _, rule := range rules {
		sessions := make(map[string]bool, len(rule.Sessions))
		for _, s := range rule.Sessions {
			sessions[strings.ToUpper(strings.TrimSpace(s))] = true
		}
		compiled = append(compiled, compiledCoreTopicRule{
			yearMin:   rule.YearMin,
			yearMax:   rule.YearMax,
			sessions:  sessions,
			numberMin: rule.NumberMin,
			numberMax: rule.NumberMax,
		})
	}
	return compiled
}

// Route 執行路由決策
// 策略優先序: 完整識別碼 > 精確編號 > 部分識別碼 > 一般過濾。
// 高優先策略命中時即定案，搜尋文字不會再被當成關鍵字使用。
func (e *Engine) Route(questions []*corpus.Question, spec FilterSpec) *RouteDecision {
	trimmed := strings.TrimSpace(spec.SearchText)

	if id := e.ParseComplete(trimmed); id != nil {
		return &RouteDecision{Strategy: StrategyCompleteIdentifier, Complete: id}
	}

	if trimmed != "" {
		normalized := corpus.NormalizeID(trimmed)
		for _, q := range questions {
			if corpus.NormalizeID(q.ID) == normalized {
				return &RouteDecision{Strategy: StrategyExactID, ExactID: normalized}
			}
		}
	}

	if partial := e.ParsePartial(trimmed); partial != nil {
		return &RouteDecision{Strategy: StrategyPartialIdentifier, Partial: partial}
	}

	return &RouteDecision{Strategy: StrategyKeyword, Keywords: SplitKeywords(trimmed)}
}

// Filter 依過濾條件取出題目子集，輸出保留輸入順序
func (e *Engine) Filter(questions []*corpus.Question, spec FilterSpec) *FilterResult {
	decision := e.Route(questions, spec)
	result := &FilterResult{
		Strategy:  decision.Strategy,
		Decision:  decision,
		Questions: make([]*corpus.Question, 0, 8),
	}

	switch decision.Strategy {
	case StrategyCompleteIdentifier:
		id := decision.Complete
		for _, q := range questions {
			if q.Year == id.Year && q.Session == id.Session && q.Number == id.Number {
				result.Questions = append(result.Questions, q)
			}
		}
	case StrategyExactID:
		for _, q := range questions {
			if corpus.NormalizeID(q.ID) == decision.ExactID {
				result.Questions = append(result.Questions, q)
			}
		}
	case StrategyPartialIdentifier:
		years := make(map[int]bool, len(decision.Partial.Years))
		for _, y := range decision.Partial.Years {
			years[y] = true
		}
		for _, q := range questions {
			if !years[q.Year] {
				continue
			}
			if decision.Partial.Session != "" && q.Session != decision.Partial.Session {
				continue
			}
			result.Questions = append(result.Questions, q)
		}
	case StrategyKeyword:
		result.Questions = e.generalFilter(questions, spec, decision.Keywords)
	}

	return result
}

// FilterGeneral 不經識別碼路由，直接執行一般條件過濾。
// 供程式組出的結構化條件使用: 搜尋文字一律視為關鍵字，
// 即使長得像識別碼也不會遮蔽其餘條件。
func (e *Engine) FilterGeneral(questions []*corpus.Question, spec FilterSpec) *FilterResult {
	keywords := SplitKeywords(strings.TrimSpace(spec.SearchText))
	return &FilterResult{
		Strategy:  StrategyKeyword,
		Decision:  &RouteDecision{Strategy: StrategyKeyword, Keywords: keywords},
		Questions: e.generalFilter(questions, spec, keywords),
	}
}

// generalFilter 一般條件過濾: 所有啟用的條件以 AND 結合
func (e *Engine) generalFilter(questions []*corpus.Question, spec FilterSpec, keywords []string) []*corpus.Question {
	years := make(map[int]bool, len(spec.SelectedYears))
	for _, y := range spec.SelectedYears {
		years[y] = true
	}
	sessions := make(map[string]bool, len(spec.Sessions))
	for _, s := range spec.Sessions {
		sessions[strings.ToUpper(strings.TrimSpace(s))] = true
	}

	matched := make([]*corpus.Question, 0, len(questions))
	for _, q := range questions {
		if spec.RequireCoreTopicOnly && !e.IsCoreTopic(q) {
			continue
		}
		if len(years) > 0 && !years[q.Year] {
			continue
		}
		if len(sessions) > 0 && !sessions[q.Session] {
			continue
		}
		if len(keywords) > 0 && !matchesKeywords(q, keywords) {
			continue
		}
		matched = append(matched, q)
	}
	return matched
}

// IsCoreTopic 判斷題目是否落在核心題範圍表內
func (e *Engine) IsCoreTopic(q *corpus.Question) bool {
	e.configMutex.RLock()
	rules := e.coreTopic
	e.configMutex.RUnlock()

	for _, rule := range rules {
		if q.Year < rule.yearMin || q.Year > rule.yearMax {
			continue
		}
		if !rule.sessions[q.Session] {
			continue
		}
		if q.Number >= rule.numberMin && q.Number <= rule.numberMax {
			return true
		}
	}
	return false
}

// SplitKeywords 把搜尋文字切成關鍵字
// 以空白（含全形空白 U+3000）切分，丟棄空字串。
func SplitKeywords(text string) []string {
	return strings.Fields(text)
}

// matchesKeywords 每個關鍵字都必須命中題幹或任一選項（不分大小寫）
func matchesKeywords(q *corpus.Question, keywords []string) bool {
	text := strings.ToLower(q.QuestionText)
	for _, keyword := range keywords {
		lower := strings.ToLower(keyword)
		if strings.Contains(text, lower) {
			continue
		}
		found := false
		for _, choice := range q.Choices {
			if strings.Contains(strings.ToLower(choice), lower) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GetStrategyDescription 取得策略說明
func (e *Engine) GetStrategyDescription(strategy string) string {
	descriptions := map[string]string{
		StrategyCompleteIdentifier: "完整識別碼（年度+梯次+題號直達）",
		StrategyExactID:            "精確編號查找",
		StrategyPartialIdentifier:  "部分識別碼（年度/梯次瀏覽）",
		StrategyKeyword:            "一般條件過濾（關鍵字+年度+梯次+核心題）",
	}

	if desc, ok := descriptions[strategy]; ok {
		return desc
	}

	return fmt.Sprintf("未知策略: %s", strategy)
}
