package prompt

import (
	"strings"
	"testing"
)

func TestBuiltinsRegistered(t *testing.T) {
	r := Get()
	for _, id := range []string{
		PromptIDs.QuestionAnalysis,
		PromptIDs.CurrentContext,
		PromptIDs.Impacts,
		PromptIDs.Scenarios,
		PromptIDs.Recommendations,
		PromptIDs.Advisory,
		PromptIDs.CombinedStructure,
		PromptIDs.FinalReport,
		PromptIDs.Repair,
	} {
		if _, err := r.GetPrompt(id); err != nil {
			t.Errorf("built-in prompt %s not registered: %v", id, err)
		}
	}
}

func TestBuiltinTemplatesRender(t *testing.T) {
	vars := map[string]interface{}{
		"Question":                 "Puis-je embaucher un commercial à 60k€ ?",
		"PreviousResults":          "step summary",
		"AdaptedStructure":         "{}",
		"ExpectedStructure":        "{}",
		"FileAnalysis":             "{}",
		"FileAnalysisInstructions": "Analyze the uploaded file metadata below",
		"FileMetadataSection":      "file1.csv: date, amount",
	}
	for _, pt := range builtinTemplates {
		_, user, err := RenderDecision(pt.ID, vars)
		if err != nil {
			t.Errorf("template %s failed to render: %v", pt.ID, err)
			continue
		}
		if pt.UserPromptTmpl != "" && user == "" {
			t.Errorf("template %s rendered empty", pt.ID)
		}
	}
}

func TestQuestionSubstitution(t *testing.T) {
	question := "Ouvrir un deuxième entrepôt ?"
	_, user := MustRenderDecision(PromptIDs.QuestionAnalysis, map[string]interface{}{
		"Question": question,
	})
	if !strings.Contains(user, question) {
		t.Errorf("rendered prompt should embed the question")
	}
}

func TestPreviousResultsConditional(t *testing.T) {
	withCtx, _, err := renderImpacts(t, "earlier findings")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(withCtx, "earlier findings") {
		t.Errorf("previous results should be embedded when present")
	}

	without, _, err := renderImpacts(t, "")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(without, "CONTEXT FROM PREVIOUS STEPS") {
		t.Errorf("context header should be omitted when there are no previous results")
	}
}

func renderImpacts(t *testing.T, previous string) (string, string, error) {
	t.Helper()
	system, user, err := RenderDecision(PromptIDs.Impacts, map[string]interface{}{
		"Question":        "q",
		"PreviousResults": previous,
	})
	return user, system, err
}

func TestOverrideReplacesBuiltin(t *testing.T) {
	r := Get()
	original, err := r.GetPrompt(PromptIDs.Advisory)
	if err != nil {
		t.Fatalf("advisory prompt missing: %v", err)
	}
	defer r.Register(original)

	replacement := &PromptTemplate{
		ID:             PromptIDs.Advisory,
		UserPromptTmpl: "custom {{.Question}}",
	}
	if err := r.Register(replacement); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, user := MustRenderDecision(PromptIDs.Advisory, map[string]interface{}{"Question": "x"})
	if user != "custom x" {
		t.Errorf("override should win: %q", user)
	}
}
