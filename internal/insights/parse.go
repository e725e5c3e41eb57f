package insights

import (
	"regexp"
	"strings"
)

const maxBreakdownSteps = 4

var stepPattern = regexp.MustCompile(`^(\d+\.|\*|-)\s*(.+)`)

// parseSteps extracts task-breakdown steps from a model response: numbered or
// bulleted lines first, falling back to the first non-empty lines when the
// model ignored the format.
func parseSteps(response string) []string {
	var lines []string
	for _, line := range strings.Split(response, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}

	var steps []string
	for _, line := range lines {
		if m := stepPattern.FindStringSubmatch(line); m != nil && m[2] != "" {
			steps = append(steps, strings.TrimSpace(m[2]))
		}
	}
	if len(steps) == 0 {
		steps = lines
	}
	if len(steps) > maxBreakdownSteps {
		steps = steps[:maxBreakdownSteps]
	}
	return steps
}
