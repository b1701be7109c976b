package mcp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRegistry(t *testing.T) *ToolRegistry {
	t.Helper()
	r := NewToolRegistry()
	for _, tool := range []*ToolMetadata{
		{Name: "analyze_output", Description: "Classify command output", Category: CategoryExecution, Keywords: []string{"build", "test"}},
		{Name: "list_rules", Description: "List execution rules", Category: CategoryExecution},
		{Name: "detect_intent", Description: "Classify a phrase", Category: CategoryIntent, Keywords: []string{"sentiment"}},
		{Name: "analyze_session", Description: "Analyze a transcript", Category: CategorySession},
	} {
		require.NoError(t, r.Register(tool))
	}
	return r
}

func TestToolRegistry_Register(t *testing.T) {
	r := NewToolRegistry()
	tool := &ToolMetadata{Name: "detect_intent", Description: "Classify a phrase", Category: CategoryIntent}

	require.NoError(t, r.Register(tool))
	got, ok := r.Get("detect_intent")
	require.True(t, ok)
	assert.Equal(t, tool, got)
	assert.Equal(t, 1, r.Count())

	err := r.Register(tool)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&ToolMetadata{Category: CategoryIntent}))
	assert.Error(t, r.Register(&ToolMetadata{Name: "x"}))

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestToolRegistry_List(t *testing.T) {
	r := sampleRegistry(t)

	all := r.List("")
	require.Len(t, all, 4)
	assert.Equal(t, "analyze_output", all[0].Name)
	assert.Equal(t, "list_rules", all[3].Name)

	exec := r.List(CategoryExecution)
	require.Len(t, exec, 2)
	for _, tool := range exec {
		assert.Equal(t, CategoryExecution, tool.Category)
	}
}

func TestToolRegistry_Search(t *testing.T) {
	r := sampleRegistry(t)

	tests := []struct {
		name     string
		query    string
		category ToolCategory
		want     []string
		top      int
	}{
		{name: "exact name", query: "detect_intent", want: []string{"detect_intent"}, top: 3},
		{name: "name substring", query: "analyze", want: []string{"analyze_output", "analyze_session"}, top: 2},
		{name: "description", query: "transcript", want: []string{"analyze_session"}, top: 1},
		{name: "keyword", query: "sentiment", want: []string{"detect_intent"}, top: 1},
		{name: "regex", query: "^list_.*", want: []string{"list_rules"}, top: 2},
		{name: "category filter", query: "analyze", category: CategorySession, want: []string{"analyze_session"}, top: 2},
		{name: "invalid regex falls back to substring", query: "classify (", want: nil},
		{name: "no match", query: "kubernetes", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := r.Search(tt.query, tt.category)
			var names []string
			for _, res := range results {
				names = append(names, res.Tool.Name)
			}
			assert.Equal(t, tt.want, names)
			if len(results) > 0 {
				assert.Equal(t, tt.top, results[0].Score)
			}
		})
	}

	assert.Nil(t, r.Search("", ""))
}

func TestToolRegistry_SearchRanksByScore(t *testing.T) {
	r := sampleRegistry(t)

	// "classify" appears in two descriptions and no name.
	results := r.Search("classify", "")
	require.Len(t, results, 2)
	assert.Equal(t, "analyze_output", results[0].Tool.Name)
	assert.Equal(t, "detect_intent", results[1].Tool.Name)

	results = r.Search("rules", "")
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Score)
}

func TestToolRegistry_Concurrent(t *testing.T) {
	r := sampleRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Search("analyze", "")
			r.List(CategoryExecution)
			r.Get("detect_intent")
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, r.Count())
}
