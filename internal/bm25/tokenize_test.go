package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and splits on non-alphanumeric",
			input: "Hypertension: a Clinical-Review (2023)",
			want:  []string{"hypertension", "clinical", "review", "2023"},
		},
		{
			name:  "drops short tokens",
			input: "BP of 140 mm Hg",
			want:  []string{"140"},
		},
		{
			name:  "drops stopwords",
			input: "the patient was treated with the drug",
			want:  []string{"patient", "treated", "drug"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "only punctuation",
			input: "... --- !!!",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	input := "Randomised controlled trial of ACE inhibitors in heart failure"
	first := Tokenize(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Tokenize(input))
	}
}
