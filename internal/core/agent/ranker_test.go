package agent_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommender/internal/core/agent"
	"movie-recommender/internal/pkg/common"
)

func makeItems(n int) []common.CatalogItem {
	items := make([]common.CatalogItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, common.CatalogItem{
			Name:           fmt.Sprintf("Film %02d", i),
			Type:           common.ContentTypeMovie,
			Year:           2000 + i,
			Genres:         []string{"Action"},
			RuntimeMinutes: 100 + i,
			Rating:         5.0 + float64(i%5),
			VoteCount:      200,
		})
	}
	return items
}

func TestRankTruncatesLargeCandidateSet(t *testing.T) {
	reasoner := &scriptedReasoner{err: errors.New("unavailable")}
	ranker := agent.NewRanker(reasoner)

	out, _ := ranker.Rank(context.Background(), "anything", makeItems(15))
	require.NotNil(t, out)
	assert.Len(t, out.Recommendations, 12)
	for i, rec := range out.Recommendations {
		assert.Equal(t, i+1, rec.Rank)
	}
}

func TestRankTruncatesToLargestEven(t *testing.T) {
	reasoner := &scriptedReasoner{err: errors.New("unavailable")}
	ranker := agent.NewRanker(reasoner)

	for candidates, expected := range map[int]int{
		11: 10,
		7:  6,
		4:  4,
		2:  2,
	} {
		out, _ := ranker.Rank(context.Background(), "anything", makeItems(candidates))
		require.NotNil(t, out)
		assert.Len(t, out.Recommendations, expected, "candidates=%d", candidates)
	}
}

func TestRankSingleCandidateYieldsEmpty(t *testing.T) {
	reasoner := &scriptedReasoner{}
	ranker := agent.NewRanker(reasoner)

	out, _ := ranker.Rank(context.Background(), "anything", makeItems(1))
	require.NotNil(t, out)
	assert.Empty(t, out.Recommendations)
	// 目標為零時不得發出推理呼叫
	assert.Equal(t, 0, reasoner.callCount())
}

func TestRankEmptyCandidatesYieldsEmpty(t *testing.T) {
	reasoner := &scriptedReasoner{}
	ranker := agent.NewRanker(reasoner)

	out, _ := ranker.Rank(context.Background(), "anything", nil)
	require.NotNil(t, out)
	assert.Empty(t, out.Recommendations)
	assert.Equal(t, 0, reasoner.callCount())
}

func TestRankDeduplicatesBeforeTruncation(t *testing.T) {
	reasoner := &scriptedReasoner{err: errors.New("unavailable")}
	ranker := agent.NewRanker(reasoner)

	items := makeItems(3)
	items = append(items, items[0], items[1])

	out, _ := ranker.Rank(context.Background(), "anything", items)
	require.NotNil(t, out)
	// 去重後 3 筆，截斷到 2
	assert.Len(t, out.Recommendations, 2)
}

func TestRankDropsInventedTitles(t *testing.T) {
	// 模型回傳不在候選集合內的片名，排序必須丟棄並退回決定性排序
	reasoner := &scriptedReasoner{responses: []string{
		`{"recommendations": [
			{"name": "Film 00", "type": "movie", "year": 2000, "rank": 1, "explanation": "good"},
			{"name": "Totally Invented Film", "type": "movie", "year": 2015, "rank": 2, "explanation": "fake"}
		]}`,
	}}
	ranker := agent.NewRanker(reasoner)

	items := makeItems(2)
	out, _ := ranker.Rank(context.Background(), "anything", items)
	require.NotNil(t, out)

	valid := map[string]bool{}
	for _, item := range items {
		valid[item.Name] = true
	}
	for _, rec := range out.Recommendations {
		assert.True(t, valid[rec.Name], "unexpected title %q", rec.Name)
	}
	assert.Len(t, out.Recommendations, 2)
}

func TestRankAcceptsWellFormedModelOutput(t *testing.T) {
	reasoner := &scriptedReasoner{responses: []string{
		`{"recommendations": [
			{"name": "Film 01", "type": "movie", "year": 2001, "rank": 1, "explanation": "Rated highly"},
			{"name": "Film 00", "type": "movie", "year": 2000, "rank": 2, "explanation": "A classic"}
		]}`,
	}}
	ranker := agent.NewRanker(reasoner)

	out, result := ranker.Rank(context.Background(), "anything", makeItems(2))
	require.NotNil(t, out)
	require.NotNil(t, result)
	require.Len(t, out.Recommendations, 2)
	assert.Equal(t, "Film 01", out.Recommendations[0].Name)
	assert.Equal(t, 1, out.Recommendations[0].Rank)
	assert.Equal(t, "Film 00", out.Recommendations[1].Name)
	assert.Equal(t, 2, out.Recommendations[1].Rank)
	// 欄位從候選回填
	assert.Equal(t, 101, out.Recommendations[0].DurationMinutes)
}

func TestRankFallbackExplanationsCiteAttributes(t *testing.T) {
	reasoner := &scriptedReasoner{err: errors.New("unavailable")}
	ranker := agent.NewRanker(reasoner)

	out, _ := ranker.Rank(context.Background(), "anything", makeItems(4))
	require.NotNil(t, out)
	for _, rec := range out.Recommendations {
		assert.NotEmpty(t, rec.Explanation)
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	items := []common.CatalogItem{
		{Name: "Dune", Type: common.ContentTypeMovie, Year: 2021, Rating: 8.0},
		{Name: "dune", Type: common.ContentTypeMovie, Year: 2021, Rating: 7.0},
		{Name: "Dune", Type: common.ContentTypeShow, Year: 2021},
		{Name: "Dune", Type: common.ContentTypeMovie, Year: 1984},
	}
	out := agent.Dedupe(items)
	// 名稱比對不分大小寫，但類型或年份不同就是不同條目
	assert.Len(t, out, 3)
	assert.Equal(t, 8.0, out[0].Rating)
}
