package transcript

import "strings"

// Terminal punctuation accepted at the end of an exported line. Covers
// both Japanese and Latin sentence enders.
const terminalPunctuation = "。、？！.,?!"

// NormalizeTerminal ensures a transcript ends with terminal punctuation,
// appending "。" when it does not. Empty input yields "".
func NormalizeTerminal(text string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if strings.ContainsRune(terminalPunctuation, runes[len(runes)-1]) {
		return text
	}
	return text + "。"
}
