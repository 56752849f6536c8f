package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhraseClassifier(t *testing.T) {
	c := NewPhraseClassifier()

	tests := []struct {
		name      string
		text      string
		automated bool
	}{
		{"empty", "", false},
		{"genuine question", "How much does shipping cost?", false},
		{"genuine praise", "This looks amazing, great work", false},
		{"stock phrase", "Thanks for your comment! More info coming soon.", true},
		{"stock phrase case insensitive", "THANK YOU FOR YOUR COMMENT", true},
		{"engagement phrase", "We appreciate your engagement 😊", true},
		{"mention with reply phrasing", "@alice thank you for reaching out", true},
		{"mention alone", "@alice check this out", false},
		{"help phrase", "we're here to help whenever you need us", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.automated, c.IsAutomatedReply(tt.text))
		})
	}
}
