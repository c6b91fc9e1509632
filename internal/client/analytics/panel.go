package analytics

import "fmt"

// Row is one intent line of the panel.
type Row struct {
	Intent string
	Count  int64
}

// Panel is what the analytics view renders: either the stats or an inline
// error, never both.
type Panel struct {
	TotalConversations int64
	TotalMessages      int64
	AverageConfidence  float64
	Rows               []Row
	Error              string
}

func NewPanel(report *Report, err error) Panel {
	if err != nil {
		return Panel{Error: fmt.Sprintf("Failed to load analytics: %v", err)}
	}
	if report == nil {
		return Panel{Error: "Failed to load analytics: empty response"}
	}
	p := Panel{
		TotalConversations: report.TotalConversations,
		TotalMessages:      report.TotalMessages,
		AverageConfidence:  report.AverageConfidence,
		Rows:               make([]Row, 0, report.IntentDistribution.Len()),
	}
	for pair := report.IntentDistribution.Oldest(); pair != nil; pair = pair.Next() {
		p.Rows = append(p.Rows, Row{Intent: pair.Key, Count: pair.Value})
	}
	return p
}

// ConfidencePercent renders the average confidence as a percentage.
func (p Panel) ConfidencePercent() string {
	return fmt.Sprintf("%.1f%%", p.AverageConfidence*100)
}
