package news

import "strings"

// Lexicon of market-moving terms in Korean financial headlines, with a few
// English terms that show up in mixed-language copy.
var (
	positiveTerms = []string{
		"상승", "급등", "호재", "반등", "흑자", "증가", "개선", "돌파", "강세", "최고치",
		"호실적", "수혜", "매수", "상향", "회복", "성장", "신고가",
		"surge", "rally", "beat", "upgrade", "record high",
	}
	negativeTerms = []string{
		"하락", "급락", "악재", "적자", "감소", "우려", "약세", "부진", "폭락", "위기",
		"손실", "매도", "하향", "둔화", "리스크", "신저가", "충격",
		"plunge", "slump", "miss", "downgrade", "recession",
	}
)

// ArticleSentiment scores text in [-1, 1] as the net share of positive
// lexicon hits. It returns nil when no lexicon term occurs.
func ArticleSentiment(text string) *float64 {
	text = strings.ToLower(text)
	pos := countTerms(text, positiveTerms)
	neg := countTerms(text, negativeTerms)
	if pos+neg == 0 {
		return nil
	}
	score := float64(pos-neg) / float64(pos+neg)
	return &score
}

// Korean words inflect by suffix, so terms are matched as substrings rather
// than as whole tokens.
func countTerms(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		n += strings.Count(text, t)
	}
	return n
}
