// Package totals implements the additive FileTotals/ReportTotals monoid and
// its rational coverage-percentage getter. It depends only on
// internal/coverage, not internal/model, so that model can depend on totals
// without a cycle: callers hand in lines through the LineLike interface
// rather than a concrete model.ReportLine.
package totals

import (
	"math/big"

	"github.com/patchcov/patchcov/internal/coverage"
)

// LineLike is the minimal view FromLines needs of a report line. It exists
// so this package never imports internal/model.
type LineLike interface {
	Cov() coverage.Coverage
	CovType() coverage.Type
	Complex() (coverage.Complexity, bool)
}

// FileTotals is the per-file accumulator: hits/misses/partials plus the
// branch/method/complexity counters attached to it. Lines is
// derived, never stored independently.
type FileTotals struct {
	Hits            int32
	Misses          int32
	Partials        int32
	Branches        int32
	Methods         int32
	Sessions        int32
	Complexity      int32
	ComplexityTotal int32
}

// Lines is the derived line count hits+misses+partials.
func (f FileTotals) Lines() int32 {
	return f.Hits + f.Misses + f.Partials
}

// FromLines builds a FileTotals by folding every line's coverage, coverage
// type, and optional complexity into the accumulator.
func FromLines(lines []LineLike) FileTotals {
	var f FileTotals
	for _, l := range lines {
		switch l.Cov().Kind {
		case coverage.Hit:
			f.Hits++
		case coverage.Miss:
			f.Misses++
		case coverage.Partial:
			f.Partials++
		}
		switch l.CovType() {
		case coverage.Branch:
			f.Branches++
		case coverage.Method:
			f.Methods++
		}
		if c, ok := l.Complex(); ok {
			f.Complexity += c.Used
			if c.HasTotal {
				f.ComplexityTotal += c.Total
			}
		}
	}
	return f
}

// Coverage renders the hits/lines ratio: nil if there
// are no lines, exactly "100"/"0" at the boundaries, else a 5-fractional-
// digit decimal string computed with exact rational arithmetic.
func (f FileTotals) Coverage() *string {
	return coveragePercent(int64(f.Hits), int64(f.Lines()))
}

// ReportTotals is FileTotals plus the files/sessions counters
// track at the report level. Sessions is set externally by the analyzer, not
// summed from per-file contributions.
type ReportTotals struct {
	FileTotals
	Files int32
}

// AddUp folds one file's totals into the report accumulator. Per the
// §4.4, an empty file (Lines()==0) contributes nothing, including to the
// Files counter.
func (r *ReportTotals) AddUp(f FileTotals) {
	if f.Lines() == 0 {
		return
	}
	r.Files++
	r.Hits += f.Hits
	r.Misses += f.Misses
	r.Partials += f.Partials
	r.Branches += f.Branches
	r.Methods += f.Methods
	r.Complexity += f.Complexity
	r.ComplexityTotal += f.ComplexityTotal
}

// coveragePercent is shared by FileTotals and ReportTotals: both expose the
// same "d.ddddd" / "100" / "0" / nil getter over a hits/lines pair.
func coveragePercent(hits, lines int64) *string {
	if lines == 0 {
		return nil
	}
	if hits == lines {
		s := "100"
		return &s
	}
	if hits == 0 {
		s := "0"
		return &s
	}
	// 100 * hits / lines, rounded to 5 fractional digits via exact rational
	// arithmetic, never a binary float comparison or division.
	pct := new(big.Rat).SetFrac64(hits*100, lines)
	s := formatRat5(pct)
	return &s
}

// formatRat5 renders a nonnegative rational to exactly 5 fractional digits,
// rounding half away from zero on the 6th digit.
func formatRat5(r *big.Rat) string {
	scaled := new(big.Rat).Mul(r, big.NewRat(100000, 1))
	num := scaled.Num()
	den := scaled.Denom()

	q := new(big.Int)
	rem := new(big.Int)
	q.QuoRem(num, den, rem)

	rem2 := new(big.Int).Lsh(rem, 1)
	if rem2.CmpAbs(den) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	whole := new(big.Int)
	frac := new(big.Int)
	hundredK := big.NewInt(100000)
	whole.QuoRem(q, hundredK, frac)
	if frac.Sign() < 0 {
		frac.Neg(frac)
	}

	fracStr := frac.String()
	for len(fracStr) < 5 {
		fracStr = "0" + fracStr
	}
	return whole.String() + "." + fracStr
}
