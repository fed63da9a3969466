package search

import (
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/ar"
	"github.com/blevesearch/bleve/v2/analysis/lang/bg"
	"github.com/blevesearch/bleve/v2/analysis/lang/ca"
	"github.com/blevesearch/bleve/v2/analysis/lang/ckb"
	"github.com/blevesearch/bleve/v2/analysis/lang/cs"
	"github.com/blevesearch/bleve/v2/analysis/lang/da"
	"github.com/blevesearch/bleve/v2/analysis/lang/de"
	"github.com/blevesearch/bleve/v2/analysis/lang/el"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/lang/es"
	"github.com/blevesearch/bleve/v2/analysis/lang/eu"
	"github.com/blevesearch/bleve/v2/analysis/lang/fa"
	"github.com/blevesearch/bleve/v2/analysis/lang/fi"
	"github.com/blevesearch/bleve/v2/analysis/lang/fr"
	"github.com/blevesearch/bleve/v2/analysis/lang/ga"
	"github.com/blevesearch/bleve/v2/analysis/lang/gl"
	"github.com/blevesearch/bleve/v2/analysis/lang/hi"
	"github.com/blevesearch/bleve/v2/analysis/lang/hr"
	"github.com/blevesearch/bleve/v2/analysis/lang/hu"
	"github.com/blevesearch/bleve/v2/analysis/lang/hy"
	"github.com/blevesearch/bleve/v2/analysis/lang/id"
	"github.com/blevesearch/bleve/v2/analysis/lang/it"
	"github.com/blevesearch/bleve/v2/analysis/lang/nl"
	"github.com/blevesearch/bleve/v2/analysis/lang/no"
	"github.com/blevesearch/bleve/v2/analysis/lang/pl"
	"github.com/blevesearch/bleve/v2/analysis/lang/pt"
	"github.com/blevesearch/bleve/v2/analysis/lang/ro"
	"github.com/blevesearch/bleve/v2/analysis/lang/ru"
	"github.com/blevesearch/bleve/v2/analysis/lang/sv"
	"github.com/blevesearch/bleve/v2/analysis/lang/tr"
)

// DefaultLanguage is used when a domain has no language or an unsupported
// one.
const DefaultLanguage = "en"

var wordlists = map[string][]byte{
	"ar":  ar.ArabicStopWords,
	"bg":  bg.BulgarianStopWords,
	"ca":  ca.CatalanStopWords,
	"ckb": ckb.SoraniStopWords,
	"cs":  cs.CzechStopWords,
	"da":  da.DanishStopWords,
	"de":  de.GermanStopWords,
	"el":  el.GreekStopWords,
	"en":  en.EnglishStopWords,
	"es":  es.SpanishStopWords,
	"eu":  eu.BasqueStopWords,
	"fa":  fa.PersianStopWords,
	"fi":  fi.FinnishStopWords,
	"fr":  fr.FrenchStopWords,
	"ga":  ga.IrishStopWords,
	"gl":  gl.GalicianStopWords,
	"hi":  hi.HindiStopWords,
	"hr":  hr.CroatianStopWords,
	"hu":  hu.HungarianStopWords,
	"hy":  hy.ArmenianStopWords,
	"id":  id.IndonesianStopWords,
	"it":  it.ItalianStopWords,
	"nl":  nl.DutchStopWords,
	"no":  no.NorwegianStopWords,
	"pl":  pl.PolishStopWords,
	"pt":  pt.PortugueseStopWords,
	"ro":  ro.RomanianStopWords,
	"ru":  ru.RussianStopWords,
	"sv":  sv.SwedishStopWords,
	"tr":  tr.TurkishStopWords,
}

// techTerms stay searchable even when a wordlist contains them.
var techTerms = []string{
	"ai", "ml", "llm", "gpt", "nlp", "cv", "nn",
	"html", "css", "js", "ts", "jsx", "tsx", "xml", "json", "yaml", "toml", "svg",
	"http", "https", "ssh", "ftp", "tcp", "udp", "ip", "dns", "url", "uri",
	"api", "rest", "graphql", "grpc", "soap", "cors", "csrf", "xss", "sql", "nosql",
	"git", "npm", "yarn", "pnpm", "pip", "cli", "gui", "ide", "sdk", "ci", "cd", "devops",
	"aws", "gcp", "azure", "cdn", "vpn", "ssl", "tls", "k8s", "docker",
	"db", "orm", "crud",
	"ui", "ux", "seo", "a11y", "i18n", "l10n",
	"mvc", "mvvm", "spa", "pwa", "ssr", "csr",
	"jwt", "oauth", "saml", "sso",
	"dom", "bom", "xhr", "ajax", "wasm",
	"os", "ios", "macos", "linux", "unix",
	"pdf", "csv", "md", "rst",
}

var (
	stopwordsMu    sync.Mutex
	stopwordsCache = map[string]analysis.TokenMap{}
)

// Stopwords returns the stopword set for the primary subtag of lang and
// whether that language has its own list. Unsupported languages get the
// English list. The returned map is shared; do not modify it.
func Stopwords(lang string) (analysis.TokenMap, bool) {
	primary, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(lang)), "-")
	if primary == "" {
		primary = DefaultLanguage
	}
	_, supported := wordlists[primary]
	if !supported {
		primary = DefaultLanguage
	}

	stopwordsMu.Lock()
	defer stopwordsMu.Unlock()

	if cached, ok := stopwordsCache[primary]; ok {
		return cached, supported
	}
	set := loadStopwords(primary)
	stopwordsCache[primary] = set
	return set, supported
}

func loadStopwords(primary string) analysis.TokenMap {
	set := analysis.NewTokenMap()
	_ = set.LoadBytes(wordlists[primary])

	if primary == "en" {
		// single letters carry no meaning in English titles, and "v2" style
		// versions collapse to "v"
		for r := 'a'; r <= 'z'; r++ {
			set[string(r)] = true
		}
	}
	for _, term := range techTerms {
		delete(set, term)
	}
	return set
}
