package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/kwintel/internal/types"
)

func TestQuery(t *testing.T) {
	r := &types.ExtractionResult{
		RuleKeywords: []string{"search", "ranking"},
		MLKeywords:   []string{"machine learning"},
		Summary:      "Short summary.",
		Topic:        []string{"technology", "business"},
	}

	tests := []struct {
		name       string
		expression string
		want       string
	}{
		{"first topic", "topic[0]", "technology"},
		{"summary", "summary", "Short summary."},
		{"list", "rule_keywords", "[\n  \"search\",\n  \"ranking\"\n]"},
		{"length", "length(rule_keywords)", "2"},
		{"missing field", "phrases", "null"},
		{"multiselect", "{t: topic[0], n: length(ml_keywords)}", "{\n  \"n\": 1,\n  \"t\": \"technology\"\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Query(r, tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuery_InvalidExpression(t *testing.T) {
	_, err := Query(&types.ExtractionResult{}, "topic[")
	assert.Error(t, err)
	assert.False(t, IsValidJMESPath("topic["))
	assert.True(t, IsValidJMESPath("topic[0]"))
}

func TestApply_EmptyExpression(t *testing.T) {
	got, err := Apply(`{"a":1}`, "  ")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, got)

	_, err = Apply(`not json`, "a")
	assert.Error(t, err)
}

func TestByTopic(t *testing.T) {
	entries := []types.DatasetEntry{
		{ID: "1", Topic: "finance"},
		{ID: "2", Topic: "health"},
		{ID: "3", Topic: "Finance"},
		{ID: "4"},
	}

	got := ByTopic(entries, []string{"finance"})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	assert.Len(t, ByTopic(entries, nil), 4)
	assert.Equal(t, []string{"finance", "health", "Finance"}, Topics(entries))
}
