package nlp

import (
	"regexp"
	"strings"
)

var entityPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"time", regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:am|pm)?`)},
	{"date", regexp.MustCompile(`today|tomorrow|yesterday|\d{1,2}/\d{1,2}|\d{1,2}-\d{1,2}`)},
	{"day", regexp.MustCompile(`monday|tuesday|wednesday|thursday|friday|saturday|sunday`)},
	{"duration", regexp.MustCompile(`\d+\s*(?:minutes|minute|hours|hour|days|day|weeks|week)`)},
}

var (
	taskKeywords     = keywordExprs("create task", "add task", "remind me to", "i need to", "todo")
	participantsExpr = regexp.MustCompile(`(?i)with\s+([A-Za-z\s]+?)(?:\s+at|\s+on|\s+for|$)`)
)

// ExtractEntities pulls time expressions for every intent, plus a task
// description for task/reminder intents and participants for meetings.
// List-valued entities are []string, task_description is a string.
func ExtractEntities(input, intent string) map[string]interface{} {
	entities := make(map[string]interface{})
	lower := strings.ToLower(input)

	for _, p := range entityPatterns {
		matches := p.re.FindAllString(lower, -1)
		if len(matches) > 0 {
			entities[p.name] = matches
		}
	}

	switch intent {
	case "task_creation", "reminder":
		for _, keyword := range taskKeywords {
			loc := keyword.FindStringIndex(input)
			if loc == nil {
				continue
			}
			// offsets come from input itself; lowercasing can change byte lengths
			if description := strings.TrimSpace(input[loc[1]:]); description != "" {
				entities["task_description"] = description
			}
			break
		}
	case "schedule_meeting":
		found := participantsExpr.FindAllStringSubmatch(input, -1)
		if len(found) > 0 {
			participants := make([]string, 0, len(found))
			for _, m := range found {
				participants = append(participants, strings.TrimSpace(m[1]))
			}
			entities["participants"] = participants
		}
	}

	return entities
}

func keywordExprs(keywords ...string) []*regexp.Regexp {
	exprs := make([]*regexp.Regexp, 0, len(keywords))
	for _, k := range keywords {
		exprs = append(exprs, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(k)))
	}
	return exprs
}

func firstString(entities map[string]interface{}, key string) (string, bool) {
	switch v := entities[key].(type) {
	case string:
		return v, v != ""
	case []string:
		if len(v) > 0 {
			return v[0], true
		}
	}
	return "", false
}
