package speech

import "strings"

// SelectVoice picks the first available voice whose name contains one of
// the preferred names, preference order first. Returns "" when nothing
// matches, which callers treat as "use the environment default" — a
// missing preferred voice is never an error.
func SelectVoice(available, preferred []string) string {
	for _, want := range preferred {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		for _, have := range available {
			if strings.Contains(strings.ToLower(have), strings.ToLower(want)) {
				return have
			}
		}
	}
	return ""
}
