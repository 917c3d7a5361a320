// Package tier defines the static tier tables: which model each agent runs
// at each tier, per-model unit prices, and typical call volumes used for
// cost projection.
package tier

// Name identifies a pricing tier applied uniformly to all enabled agents.
type Name string

const (
	TierIntern    Name = "intern"
	TierAssociate Name = "associate"
	TierPartner   Name = "partner"
)

// Names lists every known tier, cheapest first.
var Names = []Name{TierIntern, TierAssociate, TierPartner}

// Valid returns true if the tier is a known value.
func (n Name) Valid() bool {
	switch n {
	case TierIntern, TierAssociate, TierPartner:
		return true
	default:
		return false
	}
}

// AgentName identifies a logical agent role in the fleet.
type AgentName string

const (
	AgentLeader       AgentName = "leader"
	AgentQuestionPrep AgentName = "question-prep"
	AgentClassifier   AgentName = "classifier"
	AgentCorpus       AgentName = "corpus-agent"
	AgentAnalyzer     AgentName = "analyzer"
	AgentInvestigator AgentName = "investigator"
	AgentAdvisor      AgentName = "advisor"
)

// AgentNames lists every known agent.
var AgentNames = []AgentName{
	AgentLeader, AgentQuestionPrep, AgentClassifier, AgentCorpus,
	AgentAnalyzer, AgentInvestigator, AgentAdvisor,
}

// Valid returns true if the agent name is a known value.
func (a AgentName) Valid() bool {
	for _, known := range AgentNames {
		if a == known {
			return true
		}
	}
	return false
}

// ModelKey identifies a concrete priced model configuration.
type ModelKey string

const (
	ModelSonnet       ModelKey = "claude-sonnet-4.5"
	ModelHaiku        ModelKey = "claude-haiku-4.5"
	ModelGeminiFlash  ModelKey = "gemini-2.5-flash"
	ModelGeminiPro    ModelKey = "gemini-2.5-pro"
	ModelCerebrasOSS  ModelKey = "cerebras-gpt-oss-120b"
	ModelGroqScout    ModelKey = "groq-llama4-scout"
	ModelGroqLlama70B ModelKey = "groq-llama3-70b"
	ModelMistralLarge ModelKey = "mistral-large-3"
	ModelMistralSmall ModelKey = "mistral-small-3"
)

// Model holds the static price card for one model.
type Model struct {
	Key            ModelKey `json:"key"`
	DisplayName    string   `json:"display_name"`
	Provider       string   `json:"provider"`
	InputUSDPer1M  float64  `json:"input_usd_per_1m"`
	OutputUSDPer1M float64  `json:"output_usd_per_1m"`
}

// Models is the static per-model price table.
var Models = map[ModelKey]Model{
	ModelSonnet:       {Key: ModelSonnet, DisplayName: "Claude Sonnet 4.5", Provider: "anthropic", InputUSDPer1M: 3.0, OutputUSDPer1M: 15.0},
	ModelHaiku:        {Key: ModelHaiku, DisplayName: "Claude Haiku 4.5", Provider: "anthropic", InputUSDPer1M: 1.0, OutputUSDPer1M: 5.0},
	ModelGeminiFlash:  {Key: ModelGeminiFlash, DisplayName: "Gemini 2.5 Flash", Provider: "gemini", InputUSDPer1M: 0.15, OutputUSDPer1M: 0.6},
	ModelGeminiPro:    {Key: ModelGeminiPro, DisplayName: "Gemini 2.5 Pro", Provider: "gemini", InputUSDPer1M: 1.25, OutputUSDPer1M: 10.0},
	ModelCerebrasOSS:  {Key: ModelCerebrasOSS, DisplayName: "GPT-OSS 120B (Cerebras)", Provider: "cerebras", InputUSDPer1M: 0.35, OutputUSDPer1M: 0.75},
	ModelGroqScout:    {Key: ModelGroqScout, DisplayName: "Llama 4 Scout (Groq)", Provider: "groq", InputUSDPer1M: 0.11, OutputUSDPer1M: 0.34},
	ModelGroqLlama70B: {Key: ModelGroqLlama70B, DisplayName: "Llama 3 70B (Groq)", Provider: "groq", InputUSDPer1M: 0.59, OutputUSDPer1M: 0.79},
	ModelMistralLarge: {Key: ModelMistralLarge, DisplayName: "Mistral Large 3", Provider: "mistral", InputUSDPer1M: 0.5, OutputUSDPer1M: 1.5},
	ModelMistralSmall: {Key: ModelMistralSmall, DisplayName: "Mistral Small 3", Provider: "mistral", InputUSDPer1M: 0.06, OutputUSDPer1M: 0.18},
}

// Assignment is the model configuration an agent runs at a given tier.
type Assignment struct {
	Primary     ModelKey `json:"primary"`
	Fallback    ModelKey `json:"fallback"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
}

// assignments maps agent -> tier -> model configuration. The investigator
// needs provider-side web search, so its intern assignment equals associate.
var assignments = map[AgentName]map[Name]Assignment{
	AgentLeader: {
		TierPartner:   {Primary: ModelHaiku, Fallback: ModelGeminiFlash, MaxTokens: 512, Temperature: 0},
		TierAssociate: {Primary: ModelGeminiFlash, Fallback: ModelCerebrasOSS, MaxTokens: 512, Temperature: 0},
		TierIntern:    {Primary: ModelCerebrasOSS, Fallback: ModelGroqScout, MaxTokens: 512, Temperature: 0},
	},
	AgentQuestionPrep: {
		TierPartner:   {Primary: ModelHaiku, Fallback: ModelGeminiFlash, MaxTokens: 1024, Temperature: 0.2},
		TierAssociate: {Primary: ModelGeminiFlash, Fallback: ModelCerebrasOSS, MaxTokens: 1024, Temperature: 0.2},
		TierIntern:    {Primary: ModelCerebrasOSS, Fallback: ModelGroqScout, MaxTokens: 1024, Temperature: 0.2},
	},
	AgentClassifier: {
		TierPartner:   {Primary: ModelHaiku, Fallback: ModelGeminiFlash, MaxTokens: 4096, Temperature: 0},
		TierAssociate: {Primary: ModelGeminiFlash, Fallback: ModelCerebrasOSS, MaxTokens: 4096, Temperature: 0},
		TierIntern:    {Primary: ModelCerebrasOSS, Fallback: ModelGroqScout, MaxTokens: 4096, Temperature: 0},
	},
	AgentCorpus: {
		TierPartner:   {Primary: ModelSonnet, Fallback: ModelHaiku, MaxTokens: 4096, Temperature: 0.2},
		TierAssociate: {Primary: ModelHaiku, Fallback: ModelGeminiFlash, MaxTokens: 4096, Temperature: 0.2},
		TierIntern:    {Primary: ModelGeminiFlash, Fallback: ModelCerebrasOSS, MaxTokens: 4096, Temperature: 0.2},
	},
	AgentAnalyzer: {
		TierPartner:   {Primary: ModelSonnet, Fallback: ModelGeminiPro, MaxTokens: 8192, Temperature: 0},
		TierAssociate: {Primary: ModelGeminiPro, Fallback: ModelMistralLarge, MaxTokens: 8192, Temperature: 0},
		TierIntern:    {Primary: ModelMistralLarge, Fallback: ModelGroqLlama70B, MaxTokens: 8192, Temperature: 0},
	},
	AgentInvestigator: {
		TierPartner:   {Primary: ModelSonnet, Fallback: ModelHaiku, MaxTokens: 8192, Temperature: 0},
		TierAssociate: {Primary: ModelHaiku, Fallback: ModelHaiku, MaxTokens: 8192, Temperature: 0},
		TierIntern:    {Primary: ModelHaiku, Fallback: ModelHaiku, MaxTokens: 8192, Temperature: 0},
	},
	AgentAdvisor: {
		TierPartner:   {Primary: ModelSonnet, Fallback: ModelGeminiPro, MaxTokens: 4096, Temperature: 0},
		TierAssociate: {Primary: ModelGeminiPro, Fallback: ModelMistralLarge, MaxTokens: 4096, Temperature: 0},
		TierIntern:    {Primary: ModelMistralLarge, Fallback: ModelGroqLlama70B, MaxTokens: 4096, Temperature: 0},
	},
}

// AssignmentFor returns the model configuration for an agent at a tier.
// Both names must be valid; unknown lookups return the zero Assignment.
func AssignmentFor(agent AgentName, t Name) Assignment {
	return assignments[agent][t]
}

// Volume is the assumed per-call token volume for one agent, used only for
// deterministic cost projection; never reconciled against the ledger.
type Volume struct {
	Input  int64
	Output int64
}

// TypicalVolume holds the assumed call volume per agent.
var TypicalVolume = map[AgentName]Volume{
	AgentLeader:       {Input: 800, Output: 200},
	AgentQuestionPrep: {Input: 1000, Output: 400},
	AgentClassifier:   {Input: 5000, Output: 1200},
	AgentCorpus:       {Input: 8000, Output: 2000},
	AgentAnalyzer:     {Input: 10000, Output: 4000},
	AgentInvestigator: {Input: 6000, Output: 3000},
	AgentAdvisor:      {Input: 8000, Output: 2000},
}

// AgentInfo is the per-agent slice of a tier snapshot.
type AgentInfo struct {
	Enabled     bool     `json:"enabled"`
	Model       ModelKey `json:"model"`
	Fallback    ModelKey `json:"fallback"`
	Provider    string   `json:"provider"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
}

// Info is a consistent snapshot of the whole tier state.
type Info struct {
	Current Name                    `json:"current_tier"`
	Agents  map[AgentName]AgentInfo `json:"agents"`
}
