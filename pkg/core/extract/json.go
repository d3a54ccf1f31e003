package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Montabos/Quantis/pkg/core/utils"
)

var (
	fencedJSONRe  = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	fencedAnyRe   = regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```")
	greedyBraceRe = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls a structured object out of free-form LLM text. Strategies
// are tried in order of reliability: a labeled ```json fence, any fenced
// block, the last balanced-brace object scanning backward from the end, and
// finally a greedy top-level brace match. Each candidate is repaired for
// common LLM mistakes before parsing and must decode to an object, not a
// bare list or scalar. Returns nil when nothing parses.
func ExtractJSON(text string) map[string]interface{} {
	type candidate struct {
		method string
		raw    string
	}
	var candidates []candidate

	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, candidate{"json_fence", m[1]})
	}
	if m := fencedAnyRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, candidate{"fence", m[1]})
	}
	if raw := lastBalancedObject(text); raw != "" {
		candidates = append(candidates, candidate{"end_of_text", raw})
	}
	if m := greedyBraceRe.FindString(text); m != "" {
		candidates = append(candidates, candidate{"brace_regexp", m})
	}

	for _, c := range candidates {
		if obj := decodeObject(c.raw); obj != nil {
			fmt.Printf("[EXTRACT] JSON recovered via %s strategy\n", c.method)
			return obj
		}
	}
	return nil
}

// lastBalancedObject scans line by line from the end of the text for the
// last complete brace-balanced object. Depth is counted backward: closing
// braces open the region, opening braces close it.
func lastBalancedObject(text string) string {
	lines := strings.Split(text, "\n")
	var collected []string
	depth := 0
	started := false

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if !started {
			if !strings.Contains(line, "}") {
				continue
			}
			started = true
		}
		collected = append([]string{line}, collected...)
		depth += strings.Count(line, "}") - strings.Count(line, "{")
		if depth <= 0 {
			break
		}
	}
	if !started || depth > 0 {
		return ""
	}

	raw := strings.Join(collected, "\n")
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

// decodeObject parses a candidate string into an object. Trailing commas are
// stripped first; if plain decoding fails, the repair/hjson cascade gets a
// turn.
func decodeObject(raw string) map[string]interface{} {
	raw = strings.TrimSpace(trailingComma.ReplaceAllString(raw, "$1"))
	if raw == "" {
		return nil
	}

	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		if obj, ok := v.(map[string]interface{}); ok {
			return obj
		}
		return nil
	}

	var repaired interface{}
	if _, err := utils.SmartParse(raw, &repaired); err == nil {
		if obj, ok := repaired.(map[string]interface{}); ok {
			return obj
		}
	}
	return nil
}
