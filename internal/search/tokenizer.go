package search

import (
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
)

var (
	punctuation = strings.NewReplacer(
		",", " ", "!", " ", "?", " ", ":", " ", ";", " ",
		"(", " ", ")", " ", "[", " ", "]", " ", "{", " ", "}", " ",
		"'", " ", `"`, " ",
		"-", " ", "_", " ", "/", " ",
	)
	versionToken = regexp.MustCompile(`^v\d+(\.\d+)*$`)
)

// Tokenize lowercases text, splits it on whitespace and punctuation,
// collapses version tokens such as "v2.1" to "v", removes dots and drops
// stopwords. A nil stopword set drops nothing.
func Tokenize(text string, stopwords analysis.TokenMap) []string {
	if text == "" {
		return nil
	}

	fields := strings.Fields(punctuation.Replace(strings.ToLower(text)))
	tokens := make([]string, 0, len(fields))
	for _, token := range fields {
		if versionToken.MatchString(token) {
			token = "v"
		}
		token = strings.ReplaceAll(token, ".", "")
		if token == "" || stopwords[token] {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
