package eod

// aggRow collects one symbol's evaluations over a day.
type aggRow struct {
	Symbol      string
	Market      string
	Evaluations int
	Satisfied   int
	LastClose   float64
	LastRegime  string
	Strategy    string
}
