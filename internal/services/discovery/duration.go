package discovery

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts an ISO-8601 duration like "PT1H23M45S" into
// whole seconds. Date components never occur in video durations.
func parseISODuration(value string) (int, error) {
	if value == "" || value == "P0D" {
		return 0, nil
	}

	matches := isoDurationPattern.FindStringSubmatch(value)
	if matches == nil {
		return 0, fmt.Errorf("unparseable duration %q", value)
	}

	total := 0
	multipliers := []int{3600, 60, 1}
	for i, m := range matches[1:] {
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, fmt.Errorf("unparseable duration %q", value)
		}
		total += n * multipliers[i]
	}
	return total, nil
}
