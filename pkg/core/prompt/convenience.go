package prompt

// Convenience functions for common prompt operations

// RenderDecision renders a decision workflow prompt and returns the system
// and user prompt pair.
func RenderDecision(id string, vars map[string]interface{}) (systemPrompt string, userPrompt string, err error) {
	pt, err := Get().GetPrompt(id)
	if err != nil {
		return "", "", err
	}
	ctx := NewContext()
	for k, v := range vars {
		ctx.Set(k, v)
	}
	user, err := RenderUserPrompt(pt, ctx)
	if err != nil {
		return "", "", err
	}
	return pt.SystemPrompt, user, nil
}

// MustRenderDecision is like RenderDecision but panics on error. Only used
// with built-in IDs whose templates are known to parse.
func MustRenderDecision(id string, vars map[string]interface{}) (string, string) {
	system, user, err := RenderDecision(id, vars)
	if err != nil {
		panic(err)
	}
	return system, user
}

// PromptIDs contains all known prompt identifiers
var PromptIDs = struct {
	QuestionAnalysis    string
	CurrentContext      string
	Impacts             string
	Scenarios           string
	Recommendations     string
	Advisory            string
	StructureDefinition string
	StructureAdaptation string
	CombinedStructure   string
	FinalReport         string
	Repair              string
}{
	QuestionAnalysis:    "decision.question_analysis",
	CurrentContext:      "decision.current_context",
	Impacts:             "decision.impacts",
	Scenarios:           "decision.scenarios",
	Recommendations:     "decision.recommendations",
	Advisory:            "decision.advisory",
	StructureDefinition: "decision.structure_definition",
	StructureAdaptation: "decision.structure_adaptation",
	CombinedStructure:   "decision.combined_structure",
	FinalReport:         "decision.final_report",
	Repair:              "decision.repair",
}
