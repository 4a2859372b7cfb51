// Package rangespec converts between unit-number range strings such as
// "1-3,5" and the unit numbers they denote.
//
// Two parsers live here on purpose. Parse is lenient and is what the batch
// commit path uses: bad tokens are dropped. ValidateMappings is strict and is
// what interactive feedback uses: the same bad tokens are reported.
package rangespec

import (
	"sort"
	"strconv"
	"strings"
)

// MaxUnits is the largest batch a mapping set may describe. A token spanning
// more units can never be valid, so Parse drops it like any malformed token.
const MaxUnits = 10000

// Mapping assigns the units named by Range to one storage location.
type Mapping struct {
	Range    string `json:"range"`
	Location string `json:"location"`
}

// Parse returns the unit numbers denoted by spec in token order. Malformed
// tokens are skipped.
func Parse(spec string) []int {
	units, _ := ParseReport(spec)
	return units
}

// ParseReport is Parse that also returns the tokens it skipped.
func ParseReport(spec string) (units []int, skipped []string) {
	units = make([]int, 0)
	if strings.TrimSpace(spec) == "" {
		return units, nil
	}
	for _, raw := range strings.Split(spec, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		start, end, ok := parseToken(token)
		if !ok || start > end || end-start >= MaxUnits {
			skipped = append(skipped, token)
			continue
		}
		for n := start; n <= end; n++ {
			units = append(units, n)
		}
	}
	return units, skipped
}

// SkippedTokens lists the tokens Parse would drop without expanding any span.
func SkippedTokens(spec string) []string {
	var skipped []string
	for _, raw := range strings.Split(spec, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if start, end, ok := parseToken(token); !ok || start > end || end-start >= MaxUnits {
			skipped = append(skipped, token)
		}
	}
	return skipped
}

// Compress renders numbers as the shortest range string: deduplicated,
// ascending, consecutive runs collapsed to "a-b".
func Compress(numbers []int) string {
	if len(numbers) == 0 {
		return ""
	}
	sorted := uniqueSorted(numbers)

	segments := make([]string, 0, len(sorted))
	start := sorted[0]
	prev := sorted[0]
	flush := func() {
		if start == prev {
			segments = append(segments, strconv.Itoa(start))
			return
		}
		segments = append(segments, strconv.Itoa(start)+"-"+strconv.Itoa(prev))
	}
	for _, n := range sorted[1:] {
		if n == prev+1 {
			prev = n
			continue
		}
		flush()
		start, prev = n, n
	}
	flush()
	return strings.Join(segments, ",")
}

// CountAssigned is the submission-time gate: the number of units the
// mappings name under lenient parsing, duplicates included.
func CountAssigned(mappings []Mapping) int {
	total := 0
	for _, m := range mappings {
		for _, raw := range strings.Split(m.Range, ",") {
			token := strings.TrimSpace(raw)
			if token == "" {
				continue
			}
			start, end, ok := parseToken(token)
			if !ok || start > end || end-start >= MaxUnits {
				continue
			}
			total += end - start + 1
		}
	}
	return total
}

// parseToken splits "n" or "a-b" into bounds. It does not check ordering.
func parseToken(token string) (start, end int, ok bool) {
	parts := strings.Split(token, "-")
	switch len(parts) {
	case 1:
		n, ok := parseUnit(parts[0])
		return n, n, ok
	case 2:
		a, okA := parseUnit(parts[0])
		b, okB := parseUnit(parts[1])
		return a, b, okA && okB
	default:
		return 0, 0, false
	}
}

func parseUnit(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func uniqueSorted(numbers []int) []int {
	seen := make(map[int]struct{}, len(numbers))
	out := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
