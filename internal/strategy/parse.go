package strategy

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse builds a condition from an expression such as
//
//	trend_and_perfect_order AND (rsi_fast_cross_over_slow OR rsi_oversold)
//
// AND binds tighter than OR; keywords are case-insensitive. Config-bound
// leaves use cfg for their thresholds.
func Parse(expr string, cfg StrategyConfig) (Condition, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return Condition{}, err
	}
	if len(toks) == 0 {
		return Condition{}, fmt.Errorf("empty condition expression")
	}
	p := &parser{toks: toks, cfg: cfg}
	c, err := p.parseOr()
	if err != nil {
		return Condition{}, err
	}
	if p.pos != len(p.toks) {
		return Condition{}, fmt.Errorf("unexpected %q at token %d", p.toks[p.pos], p.pos)
	}
	return c, nil
}

func tokenize(expr string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		default:
			return nil, fmt.Errorf("invalid character %q in condition expression", r)
		}
	}
	flush()
	return toks, nil
}

type parser struct {
	toks []string
	pos  int
	cfg  StrategyConfig
}

func (p *parser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *parser) parseOr() (Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return Condition{}, err
	}
	for strings.EqualFold(p.peek(), "OR") {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return Condition{}, err
		}
		left = left.Or(right)
	}
	return left, nil
}

func (p *parser) parseAnd() (Condition, error) {
	left, err := p.parseTerm()
	if err != nil {
		return Condition{}, err
	}
	for strings.EqualFold(p.peek(), "AND") {
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return Condition{}, err
		}
		left = left.And(right)
	}
	return left, nil
}

func (p *parser) parseTerm() (Condition, error) {
	tok := p.peek()
	switch {
	case tok == "":
		return Condition{}, fmt.Errorf("unexpected end of condition expression")
	case tok == "(":
		p.pos++
		c, err := p.parseOr()
		if err != nil {
			return Condition{}, err
		}
		if p.peek() != ")" {
			return Condition{}, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return c, nil
	case tok == ")", strings.EqualFold(tok, "AND"), strings.EqualFold(tok, "OR"):
		return Condition{}, fmt.Errorf("unexpected %q at token %d", tok, p.pos)
	}
	p.pos++
	return p.leaf(tok)
}

func (p *parser) leaf(name string) (Condition, error) {
	switch strings.ToLower(name) {
	case NameTrendAndPerfectOrder:
		return TrendAndPerfectOrder(), nil
	case NameRsiFastCrossOverSlow:
		return RsiFastCrossOverSlow(), nil
	case NameRsiOversold:
		return RsiOversold(p.cfg), nil
	case NameRsiOverbought:
		return RsiOverbought(p.cfg), nil
	case NameSharpDrop:
		return SharpDrop(p.cfg), nil
	}
	return Condition{}, fmt.Errorf("unknown condition %q", name)
}
