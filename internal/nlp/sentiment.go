package nlp

import "strings"

type lexiconEntry struct {
	polarity     float64
	subjectivity float64
}

// A compact opinion lexicon; polarity in [-1,1], subjectivity in [0,1].
var lexicon = map[string]lexiconEntry{
	"good": {0.7, 0.6}, "great": {0.8, 0.75}, "excellent": {1.0, 1.0}, "amazing": {0.6, 0.9},
	"awesome": {1.0, 1.0}, "nice": {0.6, 1.0}, "happy": {0.8, 1.0}, "love": {0.5, 0.6},
	"like": {0.2, 0.3}, "thanks": {0.2, 0.2}, "thank": {0.2, 0.2}, "helpful": {0.5, 0.5},
	"perfect": {1.0, 1.0}, "wonderful": {1.0, 1.0}, "best": {1.0, 0.3}, "better": {0.5, 0.5},
	"productive": {0.4, 0.5}, "glad": {0.5, 1.0}, "fine": {0.4, 0.5}, "fantastic": {0.4, 0.9},
	"bad": {-0.7, 0.67}, "terrible": {-1.0, 1.0}, "awful": {-1.0, 1.0}, "horrible": {-1.0, 1.0},
	"hate": {-0.8, 0.9}, "sad": {-0.5, 1.0}, "angry": {-0.5, 1.0}, "annoying": {-0.8, 0.9},
	"worst": {-1.0, 1.0}, "worse": {-0.4, 0.6}, "stressed": {-0.5, 0.8}, "tired": {-0.4, 0.7},
	"busy": {-0.1, 0.3}, "late": {-0.3, 0.6}, "wrong": {-0.5, 0.9}, "broken": {-0.4, 0.5},
	"useless": {-0.5, 0.2}, "boring": {-1.0, 1.0}, "difficult": {-0.5, 1.0}, "hard": {-0.3, 0.5},
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "dont": {}, "don't": {}, "isn't": {}, "isnt": {}, "cannot": {},
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "so": 1.2, "super": 1.4,
}

// AnalyzeSentiment averages lexicon scores over the opinion words in text.
// A preceding negation flips and halves a word's polarity; an intensifier
// scales it.
func AnalyzeSentiment(text string) Sentiment {
	words := strings.Fields(strings.ToLower(punctuationKeepApostrophe(text)))

	var polarity, subjectivity float64
	hits := 0
	for i, w := range words {
		entry, ok := lexicon[w]
		if !ok {
			continue
		}
		p := entry.polarity
		if i > 0 {
			if factor, ok := intensifiers[words[i-1]]; ok {
				p *= factor
			}
			if _, ok := negations[words[i-1]]; ok {
				p *= -0.5
			} else if i > 1 {
				if _, ok := negations[words[i-2]]; ok {
					p *= -0.5
				}
			}
		}
		polarity += clamp(p, -1, 1)
		subjectivity += entry.subjectivity
		hits++
	}
	if hits > 0 {
		polarity /= float64(hits)
		subjectivity /= float64(hits)
	}

	label := "neutral"
	switch {
	case polarity > 0.1:
		label = "positive"
	case polarity < -0.1:
		label = "negative"
	}
	return Sentiment{Label: label, Polarity: polarity, Subjectivity: subjectivity}
}

func punctuationKeepApostrophe(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\'', r == ' ':
			return r
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return ' '
	}, text)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
