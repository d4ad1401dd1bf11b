package content

import (
	"sort"
	"strings"

	"TrendPress/internal/domain"
)

const (
	maxKeywords = 10
	maxTags     = 5
)

var categoryKeywords = []struct {
	category domain.Category
	words    []string
}{
	{domain.CategoryTech, []string{"AI", "ChatGPT", "编程", "软件", "数码", "科技", "Python", "programming", "software"}},
	{domain.CategoryFinance, []string{"赚钱", "理财", "投资", "副业", "收入", "finance", "invest"}},
	{domain.CategoryLifestyle, []string{"健康", "生活", "效率", "工具", "方法", "摄影", "health", "lifestyle"}},
	{domain.CategoryEducation, []string{"学习", "教程", "入门", "课程", "技能", "tutorial", "course"}},
}

var categoryTags = map[domain.Category][]string{
	domain.CategoryTech:      {"人工智能", "科技", "工具"},
	domain.CategoryFinance:   {"赚钱", "副业", "财务自由"},
	domain.CategoryLifestyle: {"效率", "生活", "方法"},
	domain.CategoryEducation: {"学习", "教程", "技能"},
}

// Categorize returns the first category whose keyword list matches, or general.
func Categorize(keyword string) domain.Category {
	for _, entry := range categoryKeywords {
		for _, w := range entry.words {
			if strings.Contains(keyword, w) {
				return entry.category
			}
		}
	}
	return domain.CategoryGeneral
}

// Tags unions keyword and category with the category's canned tags, capped at five.
func Tags(keyword string, category domain.Category) []string {
	candidates := append([]string{keyword, string(category)}, categoryTags[category]...)
	return uniqueCapped(candidates, maxTags)
}

// ExtractKeywords ranks body tokens by frequency (ties by first occurrence)
// and prepends the topic keyword.
func ExtractKeywords(body, mainKeyword string) []string {
	tokens := keywordToken.FindAllString(PlainText(body), -1)

	freq := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, seen := freq[tok]; !seen {
			order = append(order, tok)
		}
		freq[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}

	return uniqueCapped(append([]string{mainKeyword}, order...), maxKeywords)
}

func uniqueCapped(values []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}
