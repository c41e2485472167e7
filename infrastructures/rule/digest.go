package rule

import (
	"context"
	"fmt"
	"strings"

	"github.com/sobadon/cyberd/domain/model/news"
)

func (a *analyzer) WriteDigest(_ context.Context, items []news.Item) (string, error) {
	if len(items) == 0 {
		return "No cybersecurity news items available for today's digest.", nil
	}

	categorized := news.Categorize(items)
	stats := news.SeverityStats(items)

	var parts []string
	parts = append(parts, fmt.Sprintf("Today's cybersecurity landscape shows %d significant developments across multiple threat vectors.", len(items)))

	var high []news.Item
	for _, item := range items {
		if item.Severity == news.SeverityHigh {
			high = append(high, item)
		}
	}
	if len(high) > 0 {
		parts = append(parts, fmt.Sprintf("Critical alerts include %d high-severity incidents, including %s.", len(high), strings.ToLower(high[0].Title)))
	}

	for _, category := range news.Categories() {
		if n := len(categorized[category]); n > 0 {
			parts = append(parts, fmt.Sprintf("In %s, %d notable developments were reported.", strings.ToLower(category.String()), n))
		}
	}

	switch {
	case stats[news.SeverityHigh] > 0:
		parts = append(parts, "The threat landscape remains elevated with multiple high-severity incidents requiring immediate attention.")
	case stats[news.SeverityMedium] > 0:
		parts = append(parts, "Moderate security concerns dominate today's news cycle.")
	default:
		parts = append(parts, "Today's security landscape shows relatively low immediate threats.")
	}

	return strings.Join(parts, " "), nil
}
