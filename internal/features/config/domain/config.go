package domain

// Prompt roles understood by the AI services.
const (
	RoleSuggestions = "suggestions"
	RoleAnalysis    = "analysis"
	RoleAssistant   = "assistant"
)

// AppConfig represents the editable application configuration.
type AppConfig struct {
	StudioContext string            `json:"studio_context" yaml:"studio_context"`
	RolePrompts   map[string]string `json:"role_prompts" yaml:"role_prompts"`
	// StepPrompts holds the assistant message shown on each wizard step,
	// keyed "1" to "5".
	StepPrompts map[string]string `json:"step_prompts" yaml:"step_prompts"`
	ModelParams ModelParams       `json:"model_params" yaml:"model_params"`
}

// ModelParams defines the parameters for the AI model.
type ModelParams struct {
	Model       string  `json:"model" yaml:"model"`
	Temperature float32 `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" validate:"gte=0,lte=16384"`
}

// RolePrompt returns the configured system prompt of role, falling back to
// the built-in one.
func (c *AppConfig) RolePrompt(role string) string {
	if p := c.RolePrompts[role]; p != "" {
		return p
	}
	return defaultRolePrompts[role]
}

// WithContext prefixes a system prompt with the studio context.
func (c *AppConfig) WithContext(prompt string) string {
	if c.StudioContext == "" {
		return prompt
	}
	return c.StudioContext + "\n\n" + prompt
}

var defaultRolePrompts = map[string]string{
	RoleSuggestions: "You are an expert web and mobile application developer assistant. Your job is to suggest additional features " +
		"that the client might not have considered based on their selected project type and features. " +
		"Provide practical, valuable suggestions that would enhance their project.",
	RoleAnalysis: "You are an expert web developer and UI/UX specialist. Your task is to analyze a website and provide detailed " +
		"recommendations for improvements. Evaluate design, performance, mobile responsiveness and functionality. " +
		"Provide realistic cost and time estimates.",
	RoleAssistant: "You are a helpful assistant that guides users through the process of defining their web or mobile " +
		"application project requirements. Ask questions to understand their needs better, make suggestions, and " +
		"provide expertise about development considerations they might not have thought about.",
}

// Default returns the configuration used when no file exists yet.
func Default() *AppConfig {
	roles := make(map[string]string, len(defaultRolePrompts))
	for k, v := range defaultRolePrompts {
		roles[k] = v
	}
	return &AppConfig{
		StudioContext: "DevCraft Studio is a freelance agency building websites, online stores, web and mobile apps for small businesses.",
		RolePrompts:   roles,
		StepPrompts: map[string]string{
			"1": "What kind of project do you have in mind?",
			"2": "Pick the features you need. Suggestions will appear as you go.",
			"3": "Tell us about the project, who it is for and when you need it.",
			"4": "What budget are you working with, and what matters most?",
			"5": "How can we reach you?",
		},
		ModelParams: ModelParams{
			Temperature: 0.7,
			MaxTokens:   500,
		},
	}
}
