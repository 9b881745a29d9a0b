package compare

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vnmchuo/bedrock-compare/internal/provider"
)

// Plan is the ordered list of prompts and models to compare.
type Plan struct {
	Models  []string        `yaml:"models" json:"models"`
	Prompts []string        `yaml:"prompts" json:"prompts"`
	Params  provider.Params `yaml:"params" json:"params"`
}

func DefaultPlan() Plan {
	return Plan{
		Models: []string{
			"amazon.nova-lite-v1:0",
			"anthropic.claude-3-sonnet-20240229-v1:0",
		},
		Prompts: []string{
			"Hello, What is Amazon Bedrock?",
			"What are the key differences between classical physics and quantum physics?",
			"If a farmer has 20 chickens and he buys 15 more, but 5 escape, how many chickens does he have left? Explain your reasoning.",
			"Explain how blockchain technology ensures security and decentralization in cryptocurrencies.",
			"Do you think artificial intelligence will ever surpass human intelligence? Why or why not?",
		},
		Params: provider.Params{
			MaxTokens:    provider.Int(100),
			MaxNewTokens: provider.Int(100),
		},
	}
}

func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if err := plan.Validate(); err != nil {
		return Plan{}, fmt.Errorf("plan %s: %w", path, err)
	}
	return plan, nil
}

func (p Plan) Validate() error {
	if len(p.Models) == 0 {
		return errors.New("no models")
	}
	if len(p.Prompts) == 0 {
		return errors.New("no prompts")
	}
	for i, m := range p.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("models[%d] is empty", i)
		}
	}
	for i, pr := range p.Prompts {
		if strings.TrimSpace(pr) == "" {
			return fmt.Errorf("prompts[%d] is empty", i)
		}
	}
	return nil
}
