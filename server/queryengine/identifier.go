package queryengine

import (
	"regexp"
	"strconv"
	"strings"
)

// 識別碼文法的年度界限
// 民國 100 年前的考題未數位化，130 是文法保留上限；題庫實際範圍另由
// DataConfig 決定，兩者刻意分離。
const (
	GrammarYearMin = 100
	GrammarYearMax = 130
)

var (
	// completeIDRegex 完整識別碼: 年度 + 梯次字母 + 題號
	// 接受空白、連字號、底線混用的分隔風格: 112-B-48、112B48、112 B 48
	completeIDRegex = regexp.MustCompile(`^(\d{2,3})[\s\-_]*([a-dA-D])[\s\-_]*(\d{1,3})$`)

	// partialYearSessionRegex 年度 + 梯次，允許殘留的尾端分隔符（輸入中的狀態）
	partialYearSessionRegex = regexp.MustCompile(`^(\d{2,3})[\s\-_]*([a-dA-D])[\s\-_]*$`)

	// partialYearRegex 恰好三位數字的年度
	partialYearRegex = regexp.MustCompile(`^\d{3}$`)

	// partialDecadeRegex 恰好兩位數字的年代前綴
	partialDecadeRegex = regexp.MustCompile(`^\d{2}$`)
)

// CompleteIdentifier 完整題目識別碼: 年度 + 梯次 + 題號
type CompleteIdentifier struct {
	Year    int    `json:"year"`
	Session string `json:"session"`
	Number  int    `json:"number"`
}

// PartialIdentifier 部分識別碼: 一組候選年度與可選的梯次
type PartialIdentifier struct {
	Years   []int  `json:"years"`
	Session string `json:"session,omitempty"` // 空字串表示未指定梯次
}

// ParseComplete 解析完整識別碼
// 三個成分缺一不可；像 112B 這種片段交給 ParsePartial，避免兩個解析器
// 互搶輸入。解析失敗一律回傳 nil，不產生錯誤。
func (e *Engine) ParseComplete(text string) *CompleteIdentifier {
	m := completeIDRegex.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	number, _ := strconv.Atoi(m[3])
	return &CompleteIdentifier{
		Year:    year,
		Session: strings.ToUpper(m[2]),
		Number:  number,
	}
}

// ParsePartial 解析部分識別碼
// 依序嘗試三種形態:
//  1. 年度 + 梯次（年度須在文法範圍內）
//  2. 恰好三位數的年度
//  3. 兩位數年代前綴，展開成十個候選年度後依題庫實際範圍過濾
//
// 超出範圍視為不匹配而非錯誤，讓輸入落回關鍵字搜尋。
func (e *Engine) ParsePartial(text string) *PartialIdentifier {
	trimmed := strings.TrimSpace(text)

	if m := partialYearSessionRegex.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		if year < GrammarYearMin || year > GrammarYearMax {
			return nil
		}
		return &PartialIdentifier{
			Years:   []int{year},
			Session: strings.ToUpper(m[2]),
		}
	}

	if partialYearRegex.MatchString(trimmed) {
		year, _ := strconv.Atoi(trimmed)
		if year < GrammarYearMin || year > GrammarYearMax {
			return nil
		}
		return &PartialIdentifier{Years: []int{year}}
	}

	if partialDecadeRegex.MatchString(trimmed) {
		prefix, _ := strconv.Atoi(trimmed)
		if prefix < GrammarYearMin/10 || prefix > GrammarYearMax/10 {
			return nil
		}
		data := e.GetConfig().Data
		years := make([]int, 0, 10)
		for digit := 0; digit <= 9; digit++ {
			year := prefix*10 + digit
			if year >= data.YearMin && year <= data.YearMax {
				years = append(years, year)
			}
		}
		if len(years) == 0 {
			return nil
		}
		return &PartialIdentifier{Years: years}
	}

	return nil
}
