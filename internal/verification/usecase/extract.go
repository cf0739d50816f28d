package usecase

import (
	"regexp"
	"strings"
)

var (
	lineBreaks   = strings.NewReplacer("\r\n", "", "\n", "", "\r", "")
	brTag        = regexp.MustCompile(`(?i)<br\s*/?>`)
	boldFragment = regexp.MustCompile(`(?is)<(?:b|strong)(?:\s[^>]*)?>(.*?)</(?:b|strong)\s*>`)
	numericRun   = regexp.MustCompile(`[0-9]+`)
)

// extractCode returns the first numeric run found inside a <b> or <strong>
// fragment of body.
func extractCode(body string) (string, bool) {
	body = brTag.ReplaceAllString(lineBreaks.Replace(body), " ")

	for _, m := range boldFragment.FindAllStringSubmatch(body, -1) {
		if code := numericRun.FindString(m[1]); code != "" {
			return code, true
		}
	}

	return "", false
}
