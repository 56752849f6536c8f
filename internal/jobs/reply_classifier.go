package jobs

import "strings"

// ReplyClassifier decides whether a comment was written by an automated
// responder. The engine skips such comments so it never answers its own
// previous replies.
type ReplyClassifier interface {
	IsAutomatedReply(text string) bool
}

// phraseClassifier flags comments containing stock auto-reply phrasing, plus
// a stricter @mention check for the patterns our own replies are built from.
type phraseClassifier struct{}

func NewPhraseClassifier() ReplyClassifier {
	return phraseClassifier{}
}

var automatedIndicators = []string{
	"thanks for your comment",
	"we appreciate your engagement",
	"thank you for your comment",
	"we're glad you",
	"thanks for sharing",
	"we love hearing from you",
	"thanks! we're",
	"we're excited",
	"you can find it",
	"let us know if",
	"you're welcome",
	"we appreciate your",
	"thanks for the",
	"thank you so much",
	"we're so glad you",
	"we love that you",
	"feel free to reach out",
	"don't hesitate to contact",
	"we'd love to hear",
	"we're here to help",
}

var mentionIndicators = []string{
	"thanks for your comment",
	"we appreciate your",
	"thank you for",
	"we're glad you",
	"we love hearing",
}

func (phraseClassifier) IsAutomatedReply(text string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)
	for _, indicator := range automatedIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	// Our replies always lead with an @mention, so a mention combined with
	// typical reply phrasing is treated as automated too.
	if strings.Contains(text, "@") {
		for _, pattern := range mentionIndicators {
			if strings.Contains(lower, pattern) {
				return true
			}
		}
	}

	return false
}
