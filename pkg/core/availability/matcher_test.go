package availability

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"revenue", "Cash Flow", "x", "date_2024"} {
		if got := Similarity(s, s); !almostEqual(got, 1.0) {
			t.Errorf("Similarity(%q,%q) = %f, want 1.0", s, s, got)
		}
	}
}

func TestSimilarityCaseInsensitive(t *testing.T) {
	if got := Similarity("REVENUE", "revenue"); !almostEqual(got, 1.0) {
		t.Errorf("case-insensitive identity = %f, want 1.0", got)
	}
}

func TestSimilarityDisjoint(t *testing.T) {
	// "xyz" vs "abc": no common characters at all.
	if got := Similarity("xyz", "abc"); got != 0 {
		t.Errorf("disjoint strings = %f, want 0", got)
	}
}

func TestSimilarityRatio(t *testing.T) {
	// "abcd" vs "bcde": longest block "bcd" (3), T = 8 -> 2*3/8 = 0.75
	if got := Similarity("abcd", "bcde"); !almostEqual(got, 0.75) {
		t.Errorf("Similarity(abcd,bcde) = %f, want 0.75", got)
	}
}

func TestSubstringContainmentFloor(t *testing.T) {
	// "revenue" is contained in "total_revenue": floored at 0.8 even though
	// the raw ratio is 2*7/20 = 0.7.
	res := FindMatches([]string{"revenue"}, []string{"total_revenue"}, DefaultMatchThreshold)
	m, ok := res.Matched["revenue"]
	if !ok {
		t.Fatalf("expected 'revenue' to match 'total_revenue'")
	}
	if m.Score < 0.8 {
		t.Errorf("substring-boosted score = %f, want >= 0.8", m.Score)
	}
	if m.MatchedColumn != "total_revenue" {
		t.Errorf("matched column = %q, want total_revenue", m.MatchedColumn)
	}
	if !almostEqual(res.MatchRate, 1.0) {
		t.Errorf("match rate = %f, want 1.0", res.MatchRate)
	}
}

func TestTokenContainment(t *testing.T) {
	// 'cash_in' covers 'inflow' through its 'in' token; same for
	// 'cash_out' and 'outflow'.
	res := FindMatches([]string{"inflow", "outflow"}, []string{"cash_in", "cash_out"}, DefaultMatchThreshold)
	if len(res.Matched) != 2 {
		t.Fatalf("matched %d columns, want 2 (unmatched: %v)", len(res.Matched), res.Unmatched)
	}
}

func TestTokenContainmentRejectsIncidentalOverlap(t *testing.T) {
	// "margin" contains the two letters 'in', but that is not the 'in' token
	// of 'cash_in' opening the word: the floor must not fire on interior
	// two-character overlaps.
	res := FindMatches([]string{"margin"}, []string{"cash_in"}, DefaultMatchThreshold)
	if len(res.Matched) != 0 {
		t.Errorf("'margin' must not match 'cash_in': %+v", res.Matched)
	}
	if len(res.Unmatched) != 1 || res.Unmatched[0] != "margin" {
		t.Errorf("unmatched = %v, want [margin]", res.Unmatched)
	}
}

func TestFindMatchesEmptyRequired(t *testing.T) {
	res := FindMatches(nil, []string{"a", "b"}, DefaultMatchThreshold)
	if res.MatchRate != 0 {
		t.Errorf("empty required match rate = %f, want 0.0", res.MatchRate)
	}
	if len(res.Matched) != 0 || len(res.Unmatched) != 0 {
		t.Errorf("empty required should match nothing: %+v", res)
	}
}

func TestFindMatchesEmptyAvailable(t *testing.T) {
	res := FindMatches([]string{"date", "balance"}, nil, DefaultMatchThreshold)
	if len(res.Matched) != 0 {
		t.Errorf("expected no matches against empty available set")
	}
	if len(res.Unmatched) != 2 {
		t.Errorf("unmatched = %v, want both required columns", res.Unmatched)
	}
	if res.MatchRate != 0 {
		t.Errorf("match rate = %f, want 0", res.MatchRate)
	}
}

func TestFindMatchesBelowThreshold(t *testing.T) {
	// "balance" against cash columns: no substring, no shared token, low
	// ratio -> unmatched.
	res := FindMatches([]string{"balance"}, []string{"cash_in", "cash_out", "date"}, DefaultMatchThreshold)
	if len(res.Matched) != 0 {
		t.Errorf("expected 'balance' unmatched, got %+v", res.Matched)
	}
}

func TestFindMatchesDeterministic(t *testing.T) {
	required := []string{"date", "revenue", "margin"}
	available := []string{"month_date", "total_revenue", "gross_margin_pct"}
	first := FindMatches(required, available, DefaultMatchThreshold)
	second := FindMatches(required, available, DefaultMatchThreshold)
	if first.MatchRate != second.MatchRate || len(first.Matched) != len(second.Matched) {
		t.Errorf("matching is not deterministic: %+v vs %+v", first, second)
	}
	for col, m := range first.Matched {
		if second.Matched[col] != m {
			t.Errorf("column %s: %+v vs %+v", col, m, second.Matched[col])
		}
	}
}
