package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var hmsPattern = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)

// ParseDuration converts the duration shapes that appear in block metadata
// to whole seconds: raw numbers, "MM:SS", "HH:MM:SS", and "1h30m45s" forms.
// Anything unrecognizable parses as 0.
func ParseDuration(v any) int {
	switch d := v.(type) {
	case nil:
		return 0
	case float64:
		return int(d)
	case int:
		return d
	case int64:
		return int(d)
	case string:
		return parseDurationString(d)
	default:
		return 0
	}
}

func parseDurationString(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		nums := make([]int, len(parts))
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return 0
			}
			nums[i] = n
		}
		switch len(nums) {
		case 2: // MM:SS
			return nums[0]*60 + nums[1]
		case 3: // HH:MM:SS
			return nums[0]*3600 + nums[1]*60 + nums[2]
		}
		return 0
	}

	m := hmsPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0
	}
	total := 0
	if m[1] != "" {
		h, _ := strconv.Atoi(m[1])
		total += h * 3600
	}
	if m[2] != "" {
		min, _ := strconv.Atoi(m[2])
		total += min * 60
	}
	if m[3] != "" {
		sec, _ := strconv.Atoi(m[3])
		total += sec
	}
	return total
}
