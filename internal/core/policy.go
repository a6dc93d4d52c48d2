package core

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChatHistoryPlaceholder marks where the flattened transcript is substituted
// into the synthesis instruction.
const ChatHistoryPlaceholder = "{{CHAT_HISTORY}}"

const businessInstruction = `You are an experienced prompt engineer responsible for gathering business context from users before a prompt is written. Follow these guidelines carefully:
Always begin the conversation with a friendly greeting. If the user greets you first, respond warmly with a greeting in return.
Politely ask permission to move forward with building the prompt. Ask questions one at a time, ensuring clarity and focus in each step.
If the user asks questions or requests help unrelated to prompt engineering, such as writing code or solving equations, politely decline and explain that your expertise is focused solely on prompt engineering.
In your initial message, start by stating "Level 1 Business Context" to set the conversation tone.
Proceed to ask these questions sequentially:

1. What industry are you in, such as healthcare, e-commerce, or SaaS?
2. What is the name of your business?
3. What products or services do you offer? Please describe them in detail.
4. Who is your target audience, and what analysis have you done on them?`

const designInstruction = `You are an experienced prompt engineer responsible for gathering prompt design details from users. Your role is to ask domain-specific questions from different perspectives, such as a consumer's or an investor's. Follow these guidelines carefully:
Always begin with a friendly greeting.
Ask questions one at a time, ensuring clarity and focus in each step.
If the user asks questions or requests help unrelated to prompt engineering, politely decline and explain that your expertise is focused solely on prompt engineering.
In your initial message, start by stating "Level 2 Prompt Design" to set the conversation tone.
Proceed to ask these questions sequentially:

1. What is the purpose of the prompt?
2. How does the prompt help your business? Make it as descriptive as you can.
3. Are you going to reuse the prompt?
4. What are the desired outputs? For example bullet points, a short paragraph, or long form.
5. Is there a specific format you need in the output?
6. Can you give an example of how the conversation between the prompt and a user should go?
7. Do you need multi-step reasoning in the prompt?`

const synthesisTemplate = `You are a highly experienced prompt engineer on a team that designs precise, effective prompts for large language models. Your responsibility is to transform raw conversational data into a single structured, detailed, goal-oriented prompt that drives high-quality output.

You are not permitted to interact with users or ask questions. A record of the prior conversation between the user and the interview assistants is provided below. It contains all available context: the user's goals, answers, follow-ups, and clarifications. Rely solely on this record.

Conversation record:
` + ChatHistoryPlaceholder + `

Guidelines:
- Reconstruct the user's intent step by step and mirror their reasoning in the structure of the prompt.
- Make only domain-bounded assumptions where information is partial; never guess beyond the given context.
- Preserve information from earlier in the conversation and integrate changed requirements accurately.
- Use specific, concrete phrasing; avoid vague pronouns and generalities.
- Produce a long, fully descriptive prompt that is self-contained and can be executed without further clarification.`

// StageConfig binds one interactive stage to its system instruction, its
// question budget, and the model that serves it.
type StageConfig struct {
	Instruction string `yaml:"instruction"`
	Threshold   int    `yaml:"threshold"`
	Model       string `yaml:"model"`
}

// StagePolicy is pure data: per-stage instructions and budgets, plus the
// synthesis call's template, trigger message, and model. The engine contains
// no stage-specific text or counts of its own.
type StagePolicy struct {
	Business StageConfig `yaml:"business"`
	Design   StageConfig `yaml:"design"`

	SynthesisTemplate string `yaml:"synthesis_template"`
	SynthesisTrigger  string `yaml:"synthesis_trigger"`
	SynthesisModel    string `yaml:"synthesis_model"`

	// TransitionMarker prefixes the response that crosses from the business
	// interview into the design interview.
	TransitionMarker string `yaml:"transition_marker"`
}

// DefaultPolicy returns the built-in stage policy. The thresholds match the
// number of enumerated questions in each instruction and must stay at 4 and 7
// for compatibility with existing front ends.
func DefaultPolicy() StagePolicy {
	return StagePolicy{
		Business: StageConfig{
			Instruction: businessInstruction,
			Threshold:   4,
			Model:       "google/gemma-2-9b-it",
		},
		Design: StageConfig{
			Instruction: designInstruction,
			Threshold:   7,
			Model:       "google/gemma-2-9b-it",
		},
		SynthesisTemplate: synthesisTemplate,
		SynthesisTrigger:  "Produce the final prompt now.",
		SynthesisModel:    "google/gemini-flash-1.5",
		TransitionMarker:  "Switching to Level 2 Prompt Design...",
	}
}

// Validate checks the policy invariants. Called at engine construction so a
// broken overlay fails at startup, not in the middle of a conversation.
func (p StagePolicy) Validate() error {
	if p.Business.Instruction == "" {
		return &PolicyError{Field: "business.instruction", Message: "must not be empty"}
	}
	if p.Design.Instruction == "" {
		return &PolicyError{Field: "design.instruction", Message: "must not be empty"}
	}
	if p.Business.Threshold <= 0 {
		return &PolicyError{Field: "business.threshold", Message: "must be positive"}
	}
	if p.Design.Threshold <= 0 {
		return &PolicyError{Field: "design.threshold", Message: "must be positive"}
	}
	if !strings.Contains(p.SynthesisTemplate, ChatHistoryPlaceholder) {
		return &PolicyError{
			Field:   "synthesis_template",
			Message: fmt.Sprintf("missing %s placeholder", ChatHistoryPlaceholder),
		}
	}
	if p.SynthesisTrigger == "" {
		return &PolicyError{Field: "synthesis_trigger", Message: "must not be empty"}
	}
	return nil
}

// LoadPolicyFile overlays a YAML policy file onto base. Fields absent from
// the file keep their base values.
func LoadPolicyFile(path string, base StagePolicy) (StagePolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return base, fmt.Errorf("parse policy file: %w", err)
	}
	return base, nil
}

// PolicyFromConfig assembles the effective stage policy: built-in defaults,
// then the optional YAML overlay, then env model overrides.
func PolicyFromConfig(cfg *Config) (StagePolicy, error) {
	policy := DefaultPolicy()

	if cfg.PolicyFile != "" {
		loaded, err := LoadPolicyFile(cfg.PolicyFile, policy)
		if err != nil {
			return policy, err
		}
		policy = loaded
	}

	if cfg.BusinessModel != "" {
		policy.Business.Model = cfg.BusinessModel
	}
	if cfg.DesignModel != "" {
		policy.Design.Model = cfg.DesignModel
	}
	if cfg.SynthesisModel != "" {
		policy.SynthesisModel = cfg.SynthesisModel
	}

	return policy, policy.Validate()
}
