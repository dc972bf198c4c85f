// Package filter applies JMESPath queries to results and narrows dataset listings.
package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmespath/go-jmespath"

	"github.com/studiowebux/kwintel/internal/types"
)

// Query applies a JMESPath expression to the JSON form of a result.
// Field names are the wire names: rule_keywords, ml_keywords, phrases, summary, topic.
func Query(r *types.ExtractionResult, expression string) (string, error) {
	if r == nil {
		r = &types.ExtractionResult{}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return Apply(string(data), expression)
}

// Apply applies a JMESPath expression to a JSON document.
// An empty expression returns the document unchanged.
func Apply(jsonStr string, expression string) (string, error) {
	if strings.TrimSpace(expression) == "" {
		return jsonStr, nil
	}

	var data interface{}
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}

	if result == nil {
		return "null", nil
	}

	// Plain strings print without quotes
	if s, ok := result.(string); ok {
		return s, nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	return string(output), nil
}

// IsValidJMESPath checks if an expression is valid JMESPath syntax
func IsValidJMESPath(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}

// ByTopic keeps entries whose topic matches ANY of the given topics
func ByTopic(entries []types.DatasetEntry, topics []string) []types.DatasetEntry {
	if len(topics) == 0 {
		return entries
	}

	var filtered []types.DatasetEntry
	for _, e := range entries {
		if matchesAny(e.Topic, topics) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Topics extracts the unique topics of a list of entries, in first-seen order
func Topics(entries []types.DatasetEntry) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, e := range entries {
		if e.Topic == "" || seen[e.Topic] {
			continue
		}
		seen[e.Topic] = true
		topics = append(topics, e.Topic)
	}
	return topics
}

func matchesAny(topic string, topics []string) bool {
	for _, t := range topics {
		if strings.EqualFold(topic, strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}
