package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommender/internal/pkg/common"
)

func TestExtractJSONObjectPlain(t *testing.T) {
	payload, ok := common.ExtractJSONObject(`{"intent": "greeting"}`)
	require.True(t, ok)
	assert.Equal(t, `{"intent": "greeting"}`, payload)
}

func TestExtractJSONObjectWithFence(t *testing.T) {
	raw := "Sure! Here you go:\n```json\n{\"intent\": \"greeting\"}\n```\nHope that helps."
	payload, ok := common.ExtractJSONObject(raw)
	require.True(t, ok)
	assert.Equal(t, `{"intent": "greeting"}`, payload)
}

func TestExtractJSONObjectWithPreamble(t *testing.T) {
	payload, ok := common.ExtractJSONObject(`The answer is {"queries": [{"typePreference": "any"}]} as requested`)
	require.True(t, ok)

	var parsed struct {
		Queries []map[string]interface{} `json:"queries"`
	}
	require.NoError(t, common.ParseJSON(payload, &parsed))
	assert.Len(t, parsed.Queries, 1)
}

func TestExtractJSONObjectNoObject(t *testing.T) {
	_, ok := common.ExtractJSONObject("sorry, I cannot help with that")
	assert.False(t, ok)

	_, ok = common.ExtractJSONObject("")
	assert.False(t, ok)
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	err := common.ParseJSON(`{"a": 1} {"b": 2}`, &v)
	assert.Error(t, err)
}

func TestParseJSONStrictRejectsUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	err := common.ParseJSONStrict(`{"name": "x", "extra": true}`, &v)
	assert.Error(t, err)

	require.NoError(t, common.ParseJSON(`{"name": "x", "extra": true}`, &v))
	assert.Equal(t, "x", v.Name)
}

func TestAsCustomErrorUnwrapsChain(t *testing.T) {
	wrapped := common.NewError(common.ErrCodeUpstreamError, "provider down", 502, assert.AnError)

	custom, ok := common.AsCustomError(wrapped)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeUpstreamError, custom.Code)
	assert.Equal(t, 502, custom.Status)

	_, ok = common.AsCustomError(assert.AnError)
	assert.False(t, ok)
}
