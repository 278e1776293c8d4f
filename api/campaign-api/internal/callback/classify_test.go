package internal_callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		input    string
		expected Classification
	}{
		{"yes please", Affirmative},
		{"yes, no, maybe", Affirmative},
		{"no thanks", Negative},
		{"not now", Negative},
		{"call back later", Deferred},
		{"i will call back", Deferred},
		{"hmm", Unrecognized},
		{"", Unrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.input))
		})
	}
}

func TestNormalise(t *testing.T) {
	assert.Equal(t, "yes please", Normalise("  Yes Please\n"))
}

func TestReplyLine(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range []Classification{Affirmative, Negative, Deferred, Unrecognized} {
		line := ReplyLine(c)
		assert.NotEmpty(t, line)
		assert.False(t, seen[line], "reply for %s is not distinct", c)
		seen[line] = true
	}
	assert.Equal(t, ReplyLine(Unrecognized), ReplyLine("other"))
}
