package availability

import (
	"strings"

	"github.com/Montabos/Quantis/pkg/models"
)

// DefaultMatchThreshold is the minimum similarity for a column to count as
// matched. Calibrated against real spreadsheet naming variance.
const DefaultMatchThreshold = 0.6

// substringFloor applies when the required name is contained verbatim in the
// available name. Containment is a stronger signal than edit distance alone.
const substringFloor = 0.8

// Similarity returns a case-insensitive sequence-match ratio between two
// strings, in [0,1]. Computed as 2*M/T where M is the total length of the
// longest-matching-block decomposition and T the combined length.
func Similarity(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	total := len(la) + len(lb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingLength(la, lb)) / float64(total)
}

// matchingLength sums the longest common substring and recurses on the
// flanks, mirroring classic sequence-matcher block decomposition.
func matchingLength(a, b string) int {
	ai, bi, size := longestBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingLength(a[:ai], b[:bi]) +
		matchingLength(a[ai+size:], b[bi+size:])
}

func longestBlock(a, b string) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	// lengths[j] = length of common suffix ending at a[i], b[j]
	lengths := make([]int, len(b)+1)
	for i := 0; i < len(a); i++ {
		prev := 0
		for j := 0; j < len(b); j++ {
			cur := lengths[j+1]
			if a[i] == b[j] {
				lengths[j+1] = prev + 1
				if lengths[j+1] > bestSize {
					bestSize = lengths[j+1]
					bestA = i - bestSize + 1
					bestB = j - bestSize + 1
				}
			} else {
				lengths[j+1] = 0
			}
			prev = cur
		}
	}
	return bestA, bestB, bestSize
}

// FindMatches fuzzy-matches each required column against the available
// columns, keeping the best-scoring candidate per required column. A required
// column counts as matched only when its best score reaches the threshold.
// MatchRate is matched/total, 0.0 for an empty required list.
func FindMatches(required, available []string, threshold float64) models.MatchResult {
	result := models.MatchResult{
		Matched: make(map[string]models.ColumnMatch),
	}

	for _, reqCol := range required {
		bestScore := 0.0
		bestMatch := ""
		for _, avCol := range available {
			score := pairScore(reqCol, avCol)
			if score > bestScore {
				bestScore = score
				bestMatch = avCol
			}
		}
		if bestScore >= threshold {
			result.Matched[reqCol] = models.ColumnMatch{
				RequiredColumn: reqCol,
				MatchedColumn:  bestMatch,
				Score:          bestScore,
			}
		} else {
			result.Unmatched = append(result.Unmatched, reqCol)
		}
	}

	if len(required) > 0 {
		result.MatchRate = float64(len(result.Matched)) / float64(len(required))
	}
	return result
}

// pairScore scores one required column against one available column. On top
// of the raw sequence ratio, substring containment of the required name
// floors the score, as does token-level containment: 'cash_in' still covers
// 'inflow' because its 'in' token opens the required word.
func pairScore(reqCol, avCol string) float64 {
	req := strings.ToLower(reqCol)
	av := strings.ToLower(avCol)

	score := Similarity(req, av)
	if strings.Contains(av, req) && score < substringFloor {
		score = substringFloor
	}
	if score >= substringFloor {
		return score
	}

	for _, rt := range tokenize(req) {
		for _, at := range tokenize(av) {
			if tokensRelated(rt, at) {
				return substringFloor
			}
		}
	}
	return score
}

// tokensRelated reports whether one column token is real evidence for the
// other: the available token must open the required token, or a token of at
// least three characters must be contained whole in the other side. An
// incidental two-character interior overlap ('in' inside 'margin') is noise,
// not evidence.
func tokensRelated(reqTok, avTok string) bool {
	if strings.HasPrefix(reqTok, avTok) {
		return true
	}
	if len(avTok) >= 3 && strings.Contains(reqTok, avTok) {
		return true
	}
	return len(reqTok) >= 3 && strings.Contains(avTok, reqTok)
}

func tokenize(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	var tokens []string
	for _, p := range parts {
		if len(p) >= 2 {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
