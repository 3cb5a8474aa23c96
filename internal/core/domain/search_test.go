package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchMode_IsValid(t *testing.T) {
	assert.True(t, SearchModeFullText.IsValid())
	assert.True(t, SearchModeSemantic.IsValid())
	assert.True(t, SearchModeHybrid.IsValid())
	assert.False(t, SearchMode("").IsValid())
	assert.False(t, SearchMode("vector").IsValid())
}

func TestScanProgress_Percent(t *testing.T) {
	assert.Equal(t, 0.0, ScanProgress{}.Percent())
	assert.Equal(t, 1.0, ScanProgress{Phase: PhaseCompleted}.Percent())
	assert.InDelta(t, 0.25, ScanProgress{Total: 4, Processed: 1}.Percent(), 1e-9)
}

func TestScanSession_Clone(t *testing.T) {
	s := &ScanSession{ID: "s1", Errors: []string{"a: boom"}}
	c := s.Clone()
	c.Errors[0] = "changed"

	assert.Equal(t, "a: boom", s.Errors[0])
	assert.False(t, ScanRunning.IsTerminal())
	assert.True(t, ScanFailed.IsTerminal())
}
