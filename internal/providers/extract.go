package providers

import (
	"regexp"
)

var rxFence = regexp.MustCompile("(?is)```json\\s*(\\{[\\s\\S]*?\\})\\s*```")

// ExtractJSON isolates the candidate JSON text from a completion. Models are
// told to reply with bare JSON but often wrap it in prose or a ```json fence;
// if a fenced object is present its body wins, otherwise the whole input is
// the candidate. No parsing happens here, and already-extracted JSON passes
// through unchanged (it carries no fence marker).
func ExtractJSON(raw string) string {
	if m := rxFence.FindStringSubmatch(raw); len(m) > 1 {
		return m[1]
	}
	return raw
}
