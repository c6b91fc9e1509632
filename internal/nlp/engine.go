// Package nlp implements the rule based language engine behind the chatbot:
// intent classification, entity extraction, sentiment and reply generation.
package nlp

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	defaultMinConfidence = 0.15
	unknownConfidence    = 0.1
)

type Sentiment struct {
	Label        string  `json:"sentiment"`
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

type Result struct {
	Intent         string                 `json:"intent"`
	Confidence     float64                `json:"confidence"`
	Entities       map[string]interface{} `json:"entities"`
	Sentiment      Sentiment              `json:"sentiment"`
	Response       string                 `json:"response"`
	ProcessedInput string                 `json:"processed_input"`
}

// IntentSummary is the public view of an intent.
type IntentSummary struct {
	Patterns       []string `json:"patterns"`
	SampleResponse string   `json:"sample_response"`
}

type compiledIntent struct {
	Intent
	patterns [][]string
}

type Engine struct {
	intents       []compiledIntent
	byName        map[string]int
	minConfidence float64
	now           func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Engine)

// WithMinConfidence sets the score below which input is classified unknown.
func WithMinConfidence(v float64) Option {
	return func(e *Engine) {
		if v > 0 {
			e.minConfidence = v
		}
	}
}

// WithSeed makes reply selection deterministic.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithIntents(intents []Intent) Option {
	return func(e *Engine) {
		e.compile(intents)
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		minConfidence: defaultMinConfidence,
		now:           time.Now,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.compile(DefaultIntents())
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) compile(intents []Intent) {
	e.intents = make([]compiledIntent, 0, len(intents))
	e.byName = make(map[string]int, len(intents))
	for _, intent := range intents {
		ci := compiledIntent{Intent: intent}
		for _, pattern := range intent.Patterns {
			stems, _ := Preprocess(pattern)
			// patterns made only of stop words cannot signal anything
			if len(stems) == 0 {
				continue
			}
			ci.patterns = append(ci.patterns, stems)
		}
		e.byName[intent.Name] = len(e.intents)
		e.intents = append(e.intents, ci)
	}
}

// ClassifyIntent scores every intent against the input: a full pattern match
// is worth 1.0 and each shared pattern word 0.5, normalised by the pattern
// count and boosted by 1.2 when more than one match was found.
func (e *Engine) ClassifyIntent(input string) (string, float64) {
	stems, _ := Preprocess(input)
	words := make(map[string]struct{}, len(stems))
	for _, s := range stems {
		words[s] = struct{}{}
	}

	best, bestScore := IntentUnknown, 0.0
	for _, intent := range e.intents {
		if intent.Name == IntentUnknown || len(intent.patterns) == 0 {
			continue
		}

		score, matches := 0.0, 0
		for _, pattern := range intent.patterns {
			if containsSequence(stems, pattern) {
				score += 1.0
				matches++
			}
			for _, w := range pattern {
				if _, ok := words[w]; ok {
					score += 0.5
					matches++
				}
			}
		}
		score /= float64(len(intent.patterns))
		if matches > 1 {
			score *= 1.2
		}

		if score > bestScore {
			best, bestScore = intent.Name, score
		}
	}

	if bestScore < e.minConfidence {
		return IntentUnknown, unknownConfidence
	}
	return best, clamp(bestScore, 0, 1)
}

// GenerateResponse picks a reply for the intent and appends the extracted
// task, time, date or participant details when relevant.
func (e *Engine) GenerateResponse(intent string, entities map[string]interface{}) string {
	idx, ok := e.byName[intent]
	if !ok {
		intent = IntentUnknown
		idx, ok = e.byName[IntentUnknown]
	}
	if !ok || len(e.intents[idx].Responses) == 0 {
		return ""
	}

	responses := e.intents[idx].Responses
	e.mu.Lock()
	reply := responses[e.rng.Intn(len(responses))]
	e.mu.Unlock()

	var b strings.Builder
	b.WriteString(e.fill(reply))

	switch intent {
	case "task_creation", "reminder":
		if v, ok := firstString(entities, "task_description"); ok {
			fmt.Fprintf(&b, " Task: %q", v)
		}
		if v, ok := firstString(entities, "time"); ok {
			fmt.Fprintf(&b, " Time: %s", v)
		}
		if v, ok := firstString(entities, "date"); ok {
			fmt.Fprintf(&b, " Date: %s", v)
		}
	case "schedule_meeting":
		if participants, ok := entities["participants"].([]string); ok && len(participants) > 0 {
			fmt.Fprintf(&b, " Participants: %s", strings.Join(participants, ", "))
		}
		if v, ok := firstString(entities, "time"); ok {
			fmt.Fprintf(&b, " Time: %s", v)
		}
	}
	return b.String()
}

func (e *Engine) fill(reply string) string {
	now := e.now()
	return strings.NewReplacer(
		"{time}", now.Format("03:04 PM"),
		"{date}", now.Format("January 02, 2006"),
		"{today}", now.Format("Monday, January 02, 2006"),
	).Replace(reply)
}

// Process runs the full pipeline over one user message.
func (e *Engine) Process(input string) Result {
	intent, confidence := e.ClassifyIntent(input)
	entities := ExtractEntities(input, intent)
	return Result{
		Intent:         intent,
		Confidence:     confidence,
		Entities:       entities,
		Sentiment:      AnalyzeSentiment(input),
		Response:       e.GenerateResponse(intent, entities),
		ProcessedInput: strings.TrimSpace(input),
	}
}

// Catalog lists every known intent except unknown with its first three
// patterns and first response.
func (e *Engine) Catalog() map[string]IntentSummary {
	out := make(map[string]IntentSummary, len(e.intents))
	for _, intent := range e.intents {
		if intent.Name == IntentUnknown {
			continue
		}
		patterns := intent.Patterns
		if len(patterns) > 3 {
			patterns = patterns[:3]
		}
		summary := IntentSummary{Patterns: append([]string(nil), patterns...)}
		if len(intent.Responses) > 0 {
			summary.SampleResponse = e.fill(intent.Responses[0])
		}
		out[intent.Name] = summary
	}
	return out
}
