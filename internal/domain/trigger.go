package domain

import "strings"

// TriggerMessage is the normalized form of the free-text event message
// that started a pipeline run: a single line with embedded double quotes
// escaped, safe for substring matching and for passing as an opaque
// environment value. It is created once per run and read-only afterward.
type TriggerMessage string

// NormalizeTrigger converts raw event text into a [TriggerMessage]. Every
// newline becomes a single space and every double quote is escaped.
// Nothing else is normalized: matching stays case-sensitive and runs of
// whitespace are left alone. An absent message normalizes to the empty
// message, which matches no phrase.
func NormalizeTrigger(raw string) TriggerMessage {
	s := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(raw)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return TriggerMessage(s)
}

// Contains reports whether the message contains the phrase as a literal,
// case-sensitive substring.
func (m TriggerMessage) Contains(phrase string) bool {
	return strings.Contains(string(m), phrase)
}
