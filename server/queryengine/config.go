package queryengine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Config 查詢引擎設定
// 文法常數（年度上下界、年代前綴）固定於識別碼文法；會隨題庫擴充而變動的
// 範圍（實際收錄年度、核心題範圍表）全部放在這裡，不寫死在程式裡。
type Config struct {
	// 題庫實際涵蓋範圍
	Data DataConfig `json:"data" yaml:"data"`

	// 核心題範圍表
	CoreTopic []CoreTopicRule `json:"coreTopic" yaml:"coreTopic"`
}

// DataConfig 題庫實際收錄的年度範圍
// 載入題庫後應以其中繼資料覆寫，部分識別碼的年代展開以此為界。
type DataConfig struct {
	// 最早收錄年度
	YearMin int `json:"yearMin" yaml:"yearMin"`
	// 最晚收錄年度
	YearMax int `json:"yearMax" yaml:"yearMax"`
}

// CoreTopicRule 核心題範圍規則
// 指定某年度區間內，哪些梯次的哪段題號屬於核心題。
type CoreTopicRule struct {
	YearMin   int      `json:"yearMin" yaml:"yearMin"`
	YearMax   int      `json:"yearMax" yaml:"yearMax"`
	Sessions  []string `json:"sessions" yaml:"sessions"`
	NumberMin int      `json:"numberMin" yaml:"numberMin"`
	NumberMax int      `json:"numberMax" yaml:"numberMax"`
}

// DefaultConfig 返回預設設定
// 預設範圍表對應目前已收錄的考試屆次，新屆次加入時由設定檔覆寫。
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			YearMin: 102,
			YearMax: 118,
		},
		CoreTopic: []CoreTopicRule{
			{YearMin: 102, YearMax: 109, Sessions: []string{"A", "B"}, NumberMin: 1, NumberMax: 80},
			{YearMin: 110, YearMax: 118, Sessions: []string{"A", "C"}, NumberMin: 1, NumberMax: 50},
		},
	}
}

// LoadCoreTopicRules 從外部設定檔載入核心題範圍表
func LoadCoreTopicRules(path string) ([]CoreTopicRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read core topic table %q", path)
	}
	var rules []CoreTopicRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, errors.Wrapf(err, "failed to parse core topic table %q", path)
	}
	return rules, nil
}

// ApplyConfig 套用設定到查詢引擎
func (e *Engine) ApplyConfig(config *Config) error {
	if err := ValidateConfig(config); err != nil {
		return err
	}
	e.configMutex.Lock()
	defer e.configMutex.Unlock()
	e.config = config
	e.coreTopic = compileCoreTopicRules(config.CoreTopic)
	return nil
}

// GetConfig 取得目前設定
func (e *Engine) GetConfig() *Config {
	e.configMutex.RLock()
	defer e.configMutex.RUnlock()
	return e.config
}

// ValidateConfig 驗證設定有效性
func ValidateConfig(config *Config) error {
	if config == nil {
		return ErrInvalidConfig{Field: "Config", Value: nil}
	}

	// 題庫範圍必須落在識別碼文法範圍內
	if config.Data.YearMin < GrammarYearMin || config.Data.YearMin > GrammarYearMax {
		return ErrInvalidConfig{Field: "Data.YearMin", Value: config.Data.YearMin}
	}
	if config.Data.YearMax < GrammarYearMin || config.Data.YearMax > GrammarYearMax {
		return ErrInvalidConfig{Field: "Data.YearMax", Value: config.Data.YearMax}
	}
	if config.Data.YearMin > config.Data.YearMax {
		return ErrInvalidConfig{Field: "Data.YearMin", Value: config.Data.YearMin}
	}

	// 驗證核心題範圍表
	for i, rule := range config.CoreTopic {
		if rule.YearMin > rule.YearMax {
			return ErrInvalidConfig{Field: fmt.Sprintf("CoreTopic[%d].YearMin", i), Value: rule.YearMin}
		}
		if rule.NumberMin < 1 || rule.NumberMin > rule.NumberMax {
			return ErrInvalidConfig{Field: fmt.Sprintf("CoreTopic[%d].NumberMin", i), Value: rule.NumberMin}
		}
		if len(rule.Sessions) == 0 {
			return ErrInvalidConfig{Field: fmt.Sprintf("CoreTopic[%d].Sessions", i), Value: rule.Sessions}
		}
		for _, s := range rule.Sessions {
			if len(strings.TrimSpace(s)) != 1 {
				return ErrInvalidConfig{Field: fmt.Sprintf("CoreTopic[%d].Sessions", i), Value: s}
			}
		}
	}

	return nil
}

// ErrInvalidConfig 設定無效錯誤
type ErrInvalidConfig struct {
	Field string
	Value interface{}
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid config field '%s': %v", e.Field, e.Value)
}
