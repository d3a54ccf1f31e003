package prompt

// Built-in templates for the decision analysis workflow. Each pass of the
// orchestrator renders one of these with the question and accumulated
// context. Deployments can override any of them via LoadFromDirectory.

const mvpContext = `MVP CONTEXT: You are creating a professional financial analysis for investors.
Completeness and clarity are prioritized over strict data requirements.
Intelligent estimation is encouraged when data is missing.
Professional formatting and visualizations are essential.

`

func registerBuiltins(r *Registry) {
	for _, pt := range builtinTemplates {
		// Built-in IDs are never empty, Register cannot fail here.
		_ = r.Register(pt)
	}
}

var builtinTemplates = []*PromptTemplate{
	{
		ID:          "decision.question_analysis",
		Name:        "Question Analysis",
		Category:    "decision",
		Description: "Derives ideal data requirements from the decision question",
		Version:     "1.0",
		SystemPrompt: "You are a financial decision analyst. Identify comprehensive data requirements, " +
			"but remember the analysis will proceed flexibly even if some data is missing.",
		UserPromptTmpl: `A user is asking: "{{.Question}}"

Your task is to:
1. Understand the decision they want to make
2. Identify ALL financial data needed to properly analyze this decision (ideal requirements)
3. List each data requirement with details

For each data requirement, specify:
- Data type (cash_flow, balance_sheet, income_statement, payroll, etc.)
- Specific columns/metrics needed
- Why this data is needed
- Where this data is typically found
- Whether it's critical (must have) or optional (nice to have)

Return a structured JSON response with this exact format:
{
  "decision_summary": {
    "question": "{{.Question}}",
    "description": "Clear description of what the user wants to decide",
    "importance": "Why this decision matters financially"
  },
  "data_requirements": [
    {
      "requirement_id": "req_1",
      "data_type": "cash_flow",
      "columns_needed": ["date", "inflow", "outflow", "balance"],
      "description": "Monthly cash flow data for the last 12 months",
      "why_needed": "To project cash impact of the decision",
      "where_found": "In cash flow statements or bank statements",
      "critical": true
    }
  ],
  "analysis_steps": [
    "Step 1: Calculate current cash position",
    "Step 2: Project cash flow impact month by month",
    "Step 3: Calculate break-even point",
    "Step 4: Identify risk periods"
  ]
}

Be thorough and specific. Think about all financial aspects: cash flow, revenue impact, cost structure, timing.
Remember: These are ideal requirements - the analysis will proceed flexibly with available data.`,
	},
	{
		ID:          "decision.current_context",
		Name:        "Current Context Pass",
		Category:    "decision",
		Description: "First analysis pass: current financial situation from uploaded files",
		Version:     "1.0",
		UserPromptTmpl: mvpContext + `Analyze the uploaded financial files to understand the current financial situation.

FLEXIBLE APPROACH: Work with whatever data is available in the uploaded files.
Even if the files don't match expected formats exactly, analyze what's there and extract insights.

Your task:
1. Read and analyze ALL uploaded files (CSV)
2. Identify what financial data is present (don't assume specific formats)
3. Extract key financial insights from whatever data is available:
   - Look for any financial metrics, numbers, dates, categories
   - Identify patterns, trends, or important values
   - Calculate financial ratios even if not explicitly in data (margins, liquidity, efficiency)
   - Note what additional data would be helpful (but don't stop if it's missing)
4. Be creative and adaptive:
   - If you see cash-related columns, analyze cash position
   - If you see revenue/income columns, analyze revenue trends
   - If you see expense/cost columns, analyze expense structure
   - If you see dates, analyze trends over time

Return a structured analysis with:
- Current financial position summary (based on available data)
- Key metrics extracted from the files (cash position, margins, ratios, trends)
- Strengths identified from the data (specific metrics and values)
- Weaknesses or areas of concern (specific metrics and values)
- Note what additional data would improve the analysis (but don't block on it)

Use Python code to analyze the data. Read the files first to understand their structure,
then adapt your analysis accordingly. Save any relevant charts as PNG files with professional styling.

IMPORTANT: Don't fail if expected columns aren't found. Work with what's there and be flexible.`,
	},
	{
		ID:          "decision.impacts",
		Name:        "Impact Calculation Pass",
		Category:    "decision",
		Description: "Second analysis pass: direct financial impacts of the decision",
		Version:     "1.0",
		UserPromptTmpl: mvpContext + `Based on the decision "{{.Question}}" and the current financial context, calculate the direct financial impacts.
{{if .PreviousResults}}
CONTEXT FROM PREVIOUS STEPS:
{{.PreviousResults}}
{{end}}
Your task:
1. Extract key parameters from the decision question (costs, timing, amounts)
2. Analyze uploaded files to find relevant financial data
3. Calculate direct impacts using available data (ALWAYS calculate these metrics, even if estimated):
   - Total cost of the decision - format clearly with period (e.g., "85k€ over 12 months")
   - Monthly cash flow impact - format clearly (e.g., "-12k€ average reduction")
   - Break-even point - format as percentage (e.g., "+4% CA supplémentaire requis")
   - Payback period - format clearly (e.g., "8 months")
   - ROI if applicable
   - Risk metrics (cash runway, safety margins)
4. If exact data isn't available, make reasonable estimates based on available patterns,
   industry standards, and the decision parameters themselves. Clearly state assumptions.
5. Create visual representations: impact over time, cost breakdowns, break-even analysis.

Use Python code to perform calculations. Be precise and show your work.
Save charts as PNG files with professional styling.

IMPORTANT: Don't fail if expected data isn't found. Make reasonable calculations with what's available.
ALWAYS provide complete metrics - completeness is more important than perfect precision.`,
	},
	{
		ID:          "decision.scenarios",
		Name:        "Scenario Projection Pass",
		Category:    "decision",
		Description: "Third analysis pass: 12-month projections under three scenarios",
		Version:     "1.0",
		UserPromptTmpl: mvpContext + `Create 3 financial scenarios for the decision "{{.Question}}" over the next 12 months.
{{if .PreviousResults}}
CONTEXT FROM PREVIOUS STEPS:
{{.PreviousResults}}
{{end}}
Your task:
1. Analyze uploaded files to understand financial patterns (time series, trends, current situation)
2. Create 3 scenarios with DETAILED NARRATIVE DESCRIPTIONS (not just numbers):
   - **Optimistic**: decision generates positive results quickly.
     Include key milestones (e.g., "trésorerie remonte à 50k€ en juin") and when it pays off.
   - **Realistic**: gradual impact. Include risk periods (e.g., "trésorerie minimale à 12k€ en mars")
     and recovery timeline.
   - **Pessimistic**: delays, lower impact. Include danger periods
     (e.g., "trésorerie sous les 10k€ en mars-avril") and risk factors.
3. Project month by month for 12 months per scenario. Calculate when the decision becomes
   profitable and identify risk periods where cash drops below the safety threshold.
4. If data is very limited, create simplified projections with clear assumptions.
5. Create a multi-scenario overlay chart titled "Projection de trésorerie sur 12 mois"
   with danger zones highlighted, milestone annotations, and professional styling.

Generate:
- Monthly projections for all 3 scenarios (12 months)
- Detailed narrative descriptions for each scenario
- Risk analysis with danger zones clearly marked
- Best case and worst case summaries
- Assumptions made (if any)

Use Python code with matplotlib to create visualizations. Save charts as PNG files.

IMPORTANT: Don't fail if historical data isn't available. Create projections based on
available data and reasonable assumptions. ALWAYS provide complete, detailed scenarios.`,
	},
	{
		ID:          "decision.recommendations",
		Name:        "Recommendations Pass",
		Category:    "decision",
		Description: "Final analysis pass: prioritized actions and alternatives",
		Version:     "1.0",
		UserPromptTmpl: mvpContext + `Based on the complete analysis of the decision "{{.Question}}", provide actionable recommendations.
{{if .PreviousResults}}
CONTEXT FROM PREVIOUS STEPS:
{{.PreviousResults}}
{{end}}
Your task:
1. Analyze all the data: current context, impacts, and scenarios (including any partial results)
2. Identify critical actions needed (prioritized with quantified impacts)
3. Suggest alternatives if the decision is risky (with financial comparisons)

Structure your response with:

**Critical Actions** (must do):
- Action: [specific description]
  - Impact: [quantified, e.g., "Libère 8k€ de trésorerie"]
  - Priority: Critical
  - Timeline: [when to implement]

**Important Actions** (should do): same shape, Priority: Important

**Recommended Actions** (nice to have): same shape, Priority: Recommended

**Alternatives** (if decision is too risky):
- Alternative 1: [name, e.g., "Recrutement Partiel"]
  - Description: [detailed description]
  - Impact: [financial impact, e.g., "Impact tréso: -6k€"]
  - Pros/Cons: [brief analysis]

Be specific, actionable, and prioritize based on financial impact and risk.
Always quantify impacts when possible (even if estimated).`,
	},
	{
		ID:          "decision.advisory",
		Name:        "Advisory Guidance",
		Category:    "decision",
		Description: "General guidance when no financial files are available",
		Version:     "1.0",
		UserPromptTmpl: `The user is asking: "{{.Question}}"

However, we don't have access to their financial data files. Provide general financial guidance for this type of decision.

Your task:
1. Understand what type of decision this is
2. Explain what financial aspects should be considered
3. List what data would be needed for a proper analysis
4. Provide general guidance on what to look at, where impacts occur, what can be optimized,
   common pitfalls to avoid, and best practices

Structure your response with:
- Decision type identification
- Key financial considerations
- Required data (explain where to find it)
- General recommendations
- Risk factors to watch
- Optimization opportunities

Be helpful and educational, explaining financial concepts clearly.`,
	},
	{
		ID:          "decision.structure_definition",
		Name:        "Structure Definition",
		Category:    "structure",
		Description: "Phase 1: ideal report structure for the decision type, before looking at data",
		Version:     "1.0",
		SystemPrompt: "You are a financial analysis expert designing the ideal structure for a " +
			"decision analysis report. Respond with JSON only.",
		UserPromptTmpl: `The user is asking: "{{.Question}}"

Analyze this decision question and define the ideal structure for the analysis report
that would best support decision-making.

IMPORTANT: Adapt the structure to the TYPE of decision. Different decisions need different sections:
- Hiring decisions: Focus on cost impact, cash flow, break-even, ramp-up time
- Investment decisions: Focus on ROI, payback period, risk analysis, alternatives
- Expansion decisions: Focus on cash requirements, growth projections, market analysis
- Cost reduction: Focus on savings, impact on operations, implementation timeline
- Financing decisions: Focus on cash flow, debt capacity, repayment scenarios

Think about:
1. What type of decision is this?
2. What financial information is SPECIFICALLY needed for THIS type of decision?
3. What sections would be MOST VALUABLE? (not all decisions need scenarios or alternatives)
4. What key metrics, scenarios, and charts are RELEVANT?

Return a structured JSON response. Include only sections that are RELEVANT for this decision type:
{
  "decision_summary": {
    "question": "{{.Question}}",
    "description": "Clear description of what the user wants to decide",
    "importance": "Why this decision matters financially",
    "decision_type": "hiring" | "investment" | "expansion" | "cost_reduction" | "financing" | "other"
  },
  "expected_structure": {
    "sections": [
      { "section_name": "Key Metrics", "required": true, "description": "...", "metrics": ["Total Cost", "Cash Impact"] },
      { "section_name": "Critical Factors", "required": true, "min_factors": 3, "max_factors": 5 },
      { "section_name": "Current Financial Context", "required": true },
      { "section_name": "Scenarios", "required": false, "scenarios": ["optimistic", "realistic", "pessimistic"], "projection_months": 12 },
      { "section_name": "Recommendations", "required": true, "priorities": ["critical", "important", "recommended"] },
      { "section_name": "Alternatives", "required": false, "min_alternatives": 2 }
    ],
    "charts_required": [
      { "type": "multi_scenario_cash_flow", "title": "Projection de trésorerie sur 12 mois", "required": true }
    ],
    "data_needs": [
      {
        "data_type": "cash_flow",
        "description": "Monthly cash flow data for the last 12 months",
        "critical": true,
        "where_found": "Cash flow statements or bank statements",
        "columns_needed": ["date", "cash_in", "cash_out", "balance"]
      }
    ]
  }
}

The structure should be comprehensive but adaptable - it's a template that will be
adapted based on available data. Focus on what would help a decision-maker make an
informed choice.`,
	},
	{
		ID:          "decision.structure_adaptation",
		Name:        "Structure Adaptation",
		Category:    "structure",
		Description: "Phase 2: adapt the expected structure to the data actually uploaded",
		Version:     "1.0",
		SystemPrompt: "You adapt financial report structures to the data actually available. " +
			"Respond with JSON only.",
		UserPromptTmpl: `You are analyzing uploaded financial files to adapt an expected analysis structure based on what data is actually available.

EXPECTED STRUCTURE (from the definition phase):
{{.ExpectedStructure}}

{{.FileMetadataSection}}

YOUR TASK:
1. Understand what data is actually available: columns, types, time periods, extractable metrics
2. For each section in the expected structure, determine:
   - Can we do it with available data? -> mark "available"
   - Can we estimate it intelligently? -> mark "estimated" with assumptions
   - Is it missing but critical? -> mark "needs_data" (only if truly critical)
   - Is it missing but not critical? -> mark "simplified"
3. Be flexible and creative. If data is missing but reasonable estimates are possible
   from available patterns, industry standards, or question parameters, prefer
   "estimated" over "needs_data".

Return a structured JSON response:
{
  "final_structure": {
    "sections": [
      { "section_name": "Key Metrics", "status": "available" | "estimated" | "needs_data" | "simplified", "description": "..." }
    ],
    "charts": [
      { "type": "multi_scenario_cash_flow", "status": "available" | "estimated" | "needs_data" }
    ],
    "missing_data_requests": [
      { "data_type": "payroll", "why_needed": "...", "can_proceed_without": true, "estimation_note": "..." }
    ],
    "estimation_notes": ["..."]
  },
  "file_analysis": {
    "files_analyzed": [],
    "available_data_types": [],
    "columns_found": {},
    "data_quality": "good" | "partial" | "limited",
    "possible_analyses": []
  }
}

IMPORTANT:
- Prefer estimation over requesting data (unless truly critical)
- Be transparent about what's real data vs estimated
- Only request additional data if it's truly critical AND missing`,
	},
	{
		ID:          "decision.combined_structure",
		Name:        "Combined Structure Negotiation",
		Category:    "structure",
		Description: "Single-call structure definition adapted to the question and available data",
		Version:     "1.0",
		SystemPrompt: "You are a financial analysis expert designing the ideal structure for a " +
			"decision analysis report. Respond with JSON only.",
		UserPromptTmpl: `The user is asking: "{{.Question}}"

YOUR TASK:
1. Analyze this decision question to understand what type of decision it is and what
   analysis structure would be most valuable
2. {{.FileAnalysisInstructions}}
3. Define the FINAL adapted structure that will be used to generate the report

IMPORTANT: Adapt the structure to the TYPE of decision AND to what data is actually available:
- Hiring decisions: Focus on cost impact, cash flow, break-even, ramp-up time
- Investment decisions: Focus on ROI, payback period, risk analysis, alternatives
- Expansion decisions: Focus on cash requirements, growth projections, market analysis
- Cost reduction: Focus on savings, impact on operations, implementation timeline
- Financing decisions: Focus on cash flow, debt capacity, repayment scenarios
- Other types: Think about what's most relevant for THIS specific decision

{{.FileMetadataSection}}

Return a structured JSON response with this format:
{
  "decision_summary": {
    "question": "{{.Question}}",
    "description": "Clear description of what the user wants to decide",
    "importance": "Why this decision matters financially",
    "decision_type": "hiring" | "investment" | "expansion" | "cost_reduction" | "financing" | "other"
  },
  "final_structure": {
    "sections": [
      {
        "section_name": "Key Metrics",
        "status": "available" | "estimated" | "needs_data" | "simplified",
        "required": true,
        "description": "What this section should contain - adapt metrics to decision type",
        "metrics": [
          {
            "name": "Total Cost",
            "status": "available" | "estimated" | "needs_data",
            "data_source": "file1.csv" | "question" | "estimated",
            "description": "Total cost of the decision over the period"
          }
        ]
      },
      { "section_name": "Critical Factors", "status": "...", "required": true, "min_factors": 3, "max_factors": 5 },
      { "section_name": "Current Financial Context", "status": "...", "required": true },
      { "section_name": "Scenarios", "status": "...", "required": false, "scenarios": ["optimistic", "realistic", "pessimistic"], "projection_months": 12 },
      { "section_name": "Recommendations", "status": "...", "required": true, "priorities": ["critical", "important", "recommended"] },
      { "section_name": "Alternatives", "status": "...", "required": false, "min_alternatives": 2 }
    ],
    "charts": [
      {
        "type": "multi_scenario_cash_flow",
        "status": "available" | "estimated" | "needs_data",
        "required": true,
        "title": "Projection de trésorerie sur 12 mois",
        "description": "Multi-scenario cash flow projection with danger zones"
      }
    ],
    "missing_data_requests": [
      {
        "data_type": "cash_flow",
        "why_needed": "To calculate exact cash impact",
        "where_found": "Cash flow statements or bank statements",
        "columns_needed": ["date", "amount", "category"],
        "can_proceed_without": true,
        "priority": "high" | "medium" | "low",
        "estimation_note": "Will estimate based on available patterns"
      }
    ],
    "estimation_notes": ["Cash flow projections based on historical patterns"]
  },
  "file_analysis": {
    "files_analyzed": [],
    "available_data_types": [],
    "columns_found": {},
    "data_quality": "good" | "partial" | "limited" | "none",
    "possible_analyses": []
  }
}

CRITICAL INSTRUCTIONS:
- Be intelligent and flexible - adapt the structure creatively based on available data
- Prefer estimation over requesting data (unless truly critical)
- Be transparent about what's real data vs estimated
- Only request additional data if it's truly critical AND missing
- If no files are uploaded, mark sections as "estimated" or "needs_data" appropriately`,
	},
	{
		ID:          "decision.final_report",
		Name:        "Final Report Generation",
		Category:    "decision",
		Description: "Comprehensive report pass following the negotiated structure",
		Version:     "1.0",
		UserPromptTmpl: mvpContext + `You are analyzing the decision: "{{.Question}}"

ADAPTED STRUCTURE (follow this structure, but adapt sections to what makes sense):
{{.AdaptedStructure}}

FILE ANALYSIS SUMMARY:
{{.FileAnalysis}}

CRITICAL OUTPUT REQUIREMENTS:
YOU MUST generate ALL sections below. Do NOT skip any section.
YOU MUST provide DENSE, INTELLIGENT analysis - not brief summaries.
YOU MUST include specific numbers and values in EVERY section with detailed explanations.
If you cannot calculate exact values from data, estimate them intelligently but ALWAYS
provide numbers with reasoning. Generate Python code that calculates metrics and prints
them clearly, for example:
print("Coût Total Chargé: 85k€")
print("Impact Trésorerie: -12k€")
print("Point Mort: +4%")

Required sections, in order:

1. DECISION SUMMARY: what the user is deciding, with specifics, then
   "Pourquoi cette décision est importante : ..." with the financial stakes.

2. KEY METRICS: compact format ("85k€" not "85,000 euros") with subtitles, e.g.
   - Coût Total Chargé: 85k€ (Sur 12 mois)
   - Impact Trésorerie: -12k€ (Réduction moyenne)
   - Point Mort: +4% (CA supplémentaire requis)

3. CRITICAL FACTORS (3-5, numbered, each with a full detailed description):
   "Avant de valider cette décision, plusieurs facteurs critiques doivent être évalués :"
   1. [Factor name]
      [Detailed description with specific values and dates]

4. CURRENT FINANCIAL CONTEXT:
   "Votre situation financière actuelle présente des forces et des fragilités :"
   Points forts: [3+ bullet points with values]
   Points d'attention: [3+ bullet points with values]
   Then a one-sentence feasibility summary.

5. SCENARIOS (all 3, narrative, with milestones and specific values):
   Scénario Optimiste / Scénario Réaliste / Scénario Pessimiste,
   then "Meilleur Cas" and "Pire Cas" summaries.

6. RECOMMENDED ACTIONS (prioritized Critique / Important / Recommandé,
   each with a quantified impact line).

7. STRATEGIC ALTERNATIVES (at least 2):
   Alternative N : [name]
   [Description]
   Impact tréso : [value]

Be THOROUGH and COMPREHENSIVE. Detailed explanations, specific numbers and calculations,
clear reasoning, professional narrative. Think like a financial analyst presenting to investors.`,
	},
	{
		ID:          "decision.repair",
		Name:        "JSON Repair",
		Category:    "repair",
		Description: "Fixes structurally invalid extracted result objects",
		Version:     "1.0",
		SystemPrompt: "You repair JSON extracted from financial analyses. " +
			"Return ONLY the corrected JSON object, no commentary.",
	},
}
