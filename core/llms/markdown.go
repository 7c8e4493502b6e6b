package llms

import "strings"

var markdownReplacer = strings.NewReplacer("*", "", "_", "", "#", "")

// StripMarkdown removes emphasis and heading markers so the text can be
// spoken. Applying it twice gives the same result as applying it once.
func StripMarkdown(text string) string {
	return strings.TrimSpace(markdownReplacer.Replace(text))
}
