package extract

import (
	"regexp"
	"strings"

	"github.com/Montabos/Quantis/pkg/models"
)

const maxFactors = 5

var (
	numberedItemRe = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+(.+)$`)
	titledItemRe   = regexp.MustCompile(`(?m)^([A-ZÀ-Ü][^:\n]{2,60}):\s*$`)
	bulletItemRe   = regexp.MustCompile(`(?m)^\s*(?:[-•*]|\d+\.)\s*(.+)$`)

	scenarioHeaderRe = regexp.MustCompile(`(?im)^.{0,40}\b(optimistic|optimiste|realistic|réaliste|pessimistic|pessimiste|best case|meilleur cas|worst case|pire cas|most likely)\b.*$`)

	priorityHeaderRe = regexp.MustCompile(`(?im)^\**\s*(critical|critique|must do|à faire|important|should do|à considérer|recommended|recommandé|nice to have)\b.*$`)

	alternativeRe = regexp.MustCompile(`(?im)^\**\s*alternative\s+\d+\s*[:\s]\s*(.+)$`)

	impactLineRe   = regexp.MustCompile(`(?i)^-?\s*(?:impact|libère|gain)[:\s]+(.+)$`)
	timelineRe     = regexp.MustCompile(`(?i)(?:timeline|timing|quand)[:\s]+([^\n]+)`)
	impactInlineRe = regexp.MustCompile(`(?i)impact[:\s]+([^\n]+)`)

	milestoneRe = regexp.MustCompile(`(?i)(?:trésorerie|tresorerie|cash|revenue|revenu)\D{0,40}?(?:remonte|monte|atteint|arrive|génère|improves?|reaches?|exceeds?)\s*(?:à|to)?\s*([0-9][0-9,.]*)\s*([€$kK]?)`)
	riskRe      = regexp.MustCompile(`(?i)(?:trésorerie|tresorerie|cash)\D{0,40}?(?:sous|under|below|minimale?|constrained)\s*(?:les|the)?\s*([0-9][0-9,.]*)\s*([€$kK]?)`)

	nextSectionRe = regexp.MustCompile(`(?im)^(?:\*\*[A-ZÀ-Ü]|(?:scenario|scénario|contexte|current|recommendations?|recommandations?|alternatives?|charts?|graph))`)
)

// ExtractCriticalFactors recovers numbered or titled critical factors from
// prose. Capped at five, deduplicated by normalized prefix.
func ExtractCriticalFactors(text string) []models.Factor {
	factors := factorsFromMatches(text, numberedItemRe, 2)
	if len(factors) == 0 {
		factors = factorsFromMatches(text, titledItemRe, 1)
	}
	if len(factors) > maxFactors {
		factors = factors[:maxFactors]
	}
	return factors
}

// factorsFromMatches slices the text between consecutive item headers; the
// header line is the factor name, the body its description.
func factorsFromMatches(text string, re *regexp.Regexp, nameGroup int) []models.Factor {
	idx := re.FindAllStringSubmatchIndex(text, -1)
	if idx == nil {
		return nil
	}

	var factors []models.Factor
	seen := make(map[string]bool)
	for i, m := range idx {
		name := strings.TrimSpace(text[m[2*nameGroup]:m[2*nameGroup+1]])

		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(idx) {
			bodyEnd = idx[i+1][0]
		}
		body := text[bodyStart:bodyEnd]
		if loc := nextSectionRe.FindStringIndex(body); loc != nil {
			body = body[:loc[0]]
		}
		body = truncateAtBoundary(body)

		key := normalizedKey(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		factors = append(factors, models.Factor{
			Factor:      name,
			Description: normalizeBlock(body),
		})
	}
	return factors
}

// canonicalScenario maps a header keyword to the scenario bucket.
func canonicalScenario(keyword string) string {
	switch strings.ToLower(keyword) {
	case "optimistic", "optimiste":
		return "optimistic"
	case "realistic", "réaliste", "most likely":
		return "realistic"
	case "pessimistic", "pessimiste":
		return "pessimistic"
	case "best case", "meilleur cas":
		return "best_case"
	case "worst case", "pire cas":
		return "worst_case"
	}
	return ""
}

// ExtractScenarios pulls optimistic/realistic/pessimistic projections plus
// best/worst-case summaries from narrative, keeping the full description and
// mining it for milestones and risk periods.
func ExtractScenarios(text string) map[string]models.Scenario {
	scenarios := make(map[string]models.Scenario)

	idx := scenarioHeaderRe.FindAllStringSubmatchIndex(text, -1)
	for i, m := range idx {
		keyword := text[m[2]:m[3]]
		name := canonicalScenario(keyword)
		if name == "" {
			continue
		}
		if _, exists := scenarios[name]; exists {
			continue
		}

		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(idx) {
			bodyEnd = idx[i+1][0]
		}
		body := truncateAtBoundary(text[bodyStart:bodyEnd])
		if loc := nextSectionRe.FindStringIndex(body); loc != nil {
			body = body[:loc[0]]
		}
		description := normalizeBlock(body)
		if description == "" {
			continue
		}

		var milestones, riskPeriods []string
		for _, mm := range milestoneRe.FindAllStringSubmatch(description, 3) {
			milestones = append(milestones, mm[1]+mm[2])
		}
		for _, rm := range riskRe.FindAllStringSubmatch(description, 3) {
			riskPeriods = append(riskPeriods, rm[1]+rm[2])
		}

		scenarios[name] = models.Scenario{
			Description: description,
			Milestones:  milestones,
			RiskPeriods: riskPeriods,
		}
	}
	return scenarios
}

// canonicalPriority maps a header keyword to critical/important/recommended.
func canonicalPriority(keyword string) string {
	switch strings.ToLower(keyword) {
	case "critical", "critique", "must do", "à faire":
		return "critical"
	case "important", "should do", "à considérer":
		return "important"
	case "recommended", "recommandé", "nice to have":
		return "recommended"
	}
	return ""
}

// ExtractActions recovers priority-labeled recommended actions as
// {action, impact, timeline} triples. Each priority section runs until the
// next one or a section boundary; bullets within it become actions and
// impact/timeline lines attach to the current action.
func ExtractActions(text string) []models.Action {
	var actions []models.Action

	idx := priorityHeaderRe.FindAllStringSubmatchIndex(text, -1)
	for i, m := range idx {
		priority := canonicalPriority(text[m[2]:m[3]])
		if priority == "" {
			continue
		}

		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(idx) {
			bodyEnd = idx[i+1][0]
		}
		body := truncateAtBoundary(text[bodyStart:bodyEnd])

		var current *models.Action
		flush := func() {
			if current != nil && len(current.Action) > 5 {
				actions = append(actions, *current)
			}
			current = nil
		}

		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if im := impactLineRe.FindStringSubmatch(line); im != nil && current != nil {
				current.Impact = cleanActionText(im[1])
				continue
			}
			if tm := timelineRe.FindStringSubmatch(line); tm != nil && current != nil && current.Timeline == "" {
				current.Timeline = strings.TrimSpace(tm[1])
				continue
			}
			cleaned := cleanActionText(line)
			if cleaned == "" {
				continue
			}
			flush()
			current = &models.Action{Priority: priority, Action: cleaned}
		}
		flush()
	}

	return dedupActions(actions)
}

// dedupActions drops near-duplicate actions by normalized 50-char prefix.
func dedupActions(actions []models.Action) []models.Action {
	var unique []models.Action
	var seen []string
	for _, a := range actions {
		if len(a.Action) < 10 {
			continue
		}
		key := normalizedKey(a.Action)
		duplicate := false
		for _, s := range seen {
			if strings.Contains(s, key) || strings.Contains(key, s) ||
				(len(key) > 20 && len(s) > 20 && key[:20] == s[:20]) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		seen = append(seen, key)
		unique = append(unique, a)
	}
	return unique
}

// ExtractAlternatives recovers "Alternative N: name" blocks with their
// descriptions and inline impact notes.
func ExtractAlternatives(text string) []models.Alternative {
	var alternatives []models.Alternative

	idx := alternativeRe.FindAllStringSubmatchIndex(text, -1)
	for i, m := range idx {
		name := strings.TrimSpace(text[m[2]:m[3]])
		name = strings.TrimRight(name, "* ")

		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(idx) {
			bodyEnd = idx[i+1][0]
		}
		body := text[bodyStart:bodyEnd]
		if loc := nextSectionRe.FindStringIndex(body); loc != nil {
			body = body[:loc[0]]
		}
		description := normalizeBlock(body)
		if im := impactInlineRe.FindStringSubmatch(description); im != nil {
			description = normalizeBlock(strings.Replace(description, im[0], "", 1))
		}

		alternatives = append(alternatives, models.Alternative{
			Name:        name,
			Description: description,
		})
	}
	return alternatives
}

// ExtractConsiderations lists the bullet points of an advisory answer.
func ExtractConsiderations(text string) []string {
	var considerations []string
	for _, m := range bulletItemRe.FindAllStringSubmatch(text, 10) {
		item := strings.TrimSpace(m[1])
		if item != "" {
			considerations = append(considerations, item)
		}
	}
	return considerations
}
