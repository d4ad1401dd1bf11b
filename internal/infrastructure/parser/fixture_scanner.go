package parser

import (
	"context"

	"TrendPress/internal/domain"
	"TrendPress/internal/scanner"
)

type fixture struct {
	title   string
	keyword string
	volume  float64
}

var fixtures = map[string][]fixture{
	"baidu": {
		{"ChatGPT最新功能发布", "ChatGPT", 5000000},
		{"AI绘画工具推荐", "AI绘画", 2000000},
		{"2025年赚钱副业", "副业赚钱", 1800000},
		{"Python入门教程", "Python教程", 1500000},
		{"高效工作方法", "效率工具", 1200000},
	},
	"weibo": {
		{"AI取代哪些工作", "AI就业", 3000000},
		{"自媒体运营技巧", "自媒体", 2500000},
		{"数码产品评测", "数码评测", 2000000},
	},
	"zhihu": {
		{"如何学习编程", "编程学习", 2800000},
		{"好用的软件推荐", "软件推荐", 2200000},
		{"人工智能发展趋势", "AI趋势", 1900000},
	},
	"toutiao": {
		{"手机摄影技巧", "手机摄影", 1600000},
		{"短视频制作方法", "短视频", 1400000},
		{"健康生活方式", "健康生活", 1100000},
	},
}

const defaultFixture = "baidu"

// Fixtures returns the deterministic candidate list for a source. Unknown
// sources get the default list so the result is never empty.
func Fixtures(name string) []domain.TopicCandidate {
	set, ok := fixtures[name]
	if !ok {
		set = fixtures[defaultFixture]
	}
	out := make([]domain.TopicCandidate, 0, len(set))
	for _, f := range set {
		volume := f.volume
		out = append(out, domain.TopicCandidate{
			Title:        f.title,
			Keyword:      f.keyword,
			SearchVolume: &volume,
		})
	}
	return out
}

// FixtureScanner serves static candidates for sources without a live adapter.
type FixtureScanner struct{}

var _ scanner.Scanner = FixtureScanner{}

// Name identifies the strategy inside the registry.
func (FixtureScanner) Name() string {
	return "fixture"
}

// Scan returns the fixture list named by the "fixture" option, or the source's own list.
func (FixtureScanner) Scan(_ context.Context, req scanner.Request) ([]domain.TopicCandidate, error) {
	return Fixtures(fixtureName(req)), nil
}

func fixtureName(req scanner.Request) string {
	if name := req.Options["fixture"]; name != "" {
		return name
	}
	return req.Source
}
