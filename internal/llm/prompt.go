package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
	"github.com/tidwall/gjson"

	"stock-trader/internal/analysis"
	"stock-trader/internal/types"
)

const systemPrompt = "You are a professional market analyst. Use Chain-of-Thought reasoning."

// maxContentRunes caps each article body in the prompt.
const maxContentRunes = 1500

const formatInstructions = `Respond with a single JSON object and nothing else:
{
  "thought_process": "step-by-step reasoning about how the news affects the market",
  "sentiment_score": number between -1.0 (very bearish) and 1.0 (very bullish),
  "summary": "one sentence summary of the market",
  "primary_sectors": ["leading sectors"],
  "reasons": ["key reasons for the score"],
  "cited_news_ids": ["ids of the news items that support the conclusion"]
}`

// One worked example keeps the model on the output format.
const exampleInput = `Analyze the following news:
[a1] 반도체 수출 3개월 연속 증가
메모리 가격 반등과 AI 서버 수요로 반도체 수출이 전년 대비 20% 늘었다.
[a2] 외국인 코스피 순매수 전환
외국인이 5거래일 만에 순매수로 돌아섰다.`

const exampleOutput = `{"thought_process":"수출 회복과 외국인 수급 개선이 동시에 나타나 지수에 우호적이다.","sentiment_score":0.6,"summary":"반도체 주도의 위험 선호가 강화되는 장세.","primary_sectors":["반도체"],"reasons":["반도체 수출 증가","외국인 순매수 전환"],"cited_news_ids":["a1","a2"]}`

// BuildMessages renders the analyst prompt for at most maxNews articles.
func BuildMessages(news []types.News, maxNews int) []*schema.Message {
	if maxNews > 0 && len(news) > maxNews {
		news = news[:maxNews]
	}

	var b strings.Builder
	b.WriteString("Analyze the following news:\n")
	for _, n := range news {
		fmt.Fprintf(&b, "[%s] %s\n", n.ID, n.Title)
		if content := truncate(strings.TrimSpace(n.Content), maxContentRunes); content != "" {
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(formatInstructions)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(exampleInput),
		schema.AssistantMessage(exampleOutput, nil),
		schema.UserMessage(b.String()),
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}

var ErrNoJSON = errors.New("no JSON object in model output")

// extractJSON finds the outermost JSON object in text, tolerating code
// fences and surrounding prose.
func extractJSON(text string) (string, error) {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	obj := t[start : end+1]
	if !gjson.Valid(obj) {
		return "", fmt.Errorf("%w: invalid JSON", ErrNoJSON)
	}
	return obj, nil
}

// stringList reads a field that may be a list or a single string.
func stringList(r gjson.Result) []string {
	if !r.Exists() {
		return []string{}
	}
	if r.IsArray() {
		out := []string{}
		for _, v := range r.Array() {
			if s := strings.TrimSpace(v.String()); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := strings.TrimSpace(r.String()); s != "" {
		return []string{s}
	}
	return []string{}
}

// ParseAnalysis reads the model's JSON answer. Missing fields take neutral
// defaults; the score is kept as given, without clamping.
func ParseAnalysis(text string, date time.Time) (analysis.MarketAnalysis, error) {
	obj, err := extractJSON(text)
	if err != nil {
		return analysis.MarketAnalysis{}, err
	}

	score := gjson.Get(obj, "sentiment_score")
	summary := gjson.Get(obj, "summary").String()
	if !gjson.Get(obj, "summary").Exists() {
		summary = "Analysis Failed"
	}

	return analysis.NewMarketAnalysis(
		date,
		score.Float(),
		summary,
		stringList(gjson.Get(obj, "primary_sectors")),
		stringList(gjson.Get(obj, "reasons")),
		gjson.Get(obj, "thought_process").String(),
		stringList(gjson.Get(obj, "cited_news_ids")),
	), nil
}
