package debate

import "regexp"

// sentenceEndPattern matches buffers that end with terminal punctuation or
// a newline, optionally followed by whitespace. Matching text is ready to
// hand to speech playback.
var sentenceEndPattern = regexp.MustCompile(`[.!?\n]\s*$`)

func sentenceComplete(buf string) bool {
	return sentenceEndPattern.MatchString(buf)
}
