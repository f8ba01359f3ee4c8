package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NoResultsContext is the fixed sentinel returned when a session has no
// evaluation results to summarize.
const NoResultsContext = "No evaluation results available yet."

// EvaluationContext renders evaluation results into the bounded textual
// summary used to ground chat responses. The output is deterministic:
// identical input always yields byte-identical output. The chat model
// only ever sees this string, never raw distributions or profiles.
func EvaluationContext(results []EvaluationResult) string {
	if len(results) == 0 {
		return NoResultsContext
	}

	var b strings.Builder
	b.WriteString("Product Evaluation Results:\n\n")

	for i, r := range results {
		p := r.Profile
		fmt.Fprintf(&b, "Demographic %d: %dyo %s from %s\n", i+1, p.Age, p.Gender, p.Location)
		fmt.Fprintf(&b, "Occupation: %s, Income: %s\n", p.Occupation, p.Income)
		fmt.Fprintf(&b, "Interests: %s\n", strings.Join(p.Interests, ", "))
		fmt.Fprintf(&b, "Rating: %s/5\n", strconv.FormatFloat(r.MeanRating, 'f', -1, 64))
		fmt.Fprintf(&b, "Feedback: %s\n\n", r.Feedback)
	}

	return b.String()
}
