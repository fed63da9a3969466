// Package language guesses the language of document text and normalizes
// BCP 47 tags.
package language

import (
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// Fallback is returned whenever detection cannot produce a confident answer.
const Fallback = "en"

// DefaultMinConfidence is the threshold used by Detect.
const DefaultMinConfidence = 0.5

const minDetectableRunes = 30

// Classifier returns an ISO 639-3 code and a confidence in [0,1]. An empty
// code means the text could not be classified.
type Classifier interface {
	Classify(text string) (code string, confidence float64, err error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(text string) (string, float64, error)

func (f ClassifierFunc) Classify(text string) (string, float64, error) {
	return f(text)
}

// Detector maps classifier output to BCP 47 primary tags.
type Detector struct {
	classifier Classifier
}

// Option configures a Detector.
type Option func(*Detector)

// WithClassifier swaps the n-gram classifier.
func WithClassifier(c Classifier) Option {
	return func(d *Detector) {
		if c != nil {
			d.classifier = c
		}
	}
}

// NewDetector returns a detector backed by whatlanggo unless overridden.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{classifier: whatlangClassifier{}}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

var defaultDetector = NewDetector()

// Detect runs the default detector with DefaultMinConfidence.
func Detect(text string) string {
	return defaultDetector.Detect(text, DefaultMinConfidence)
}

// Detect returns the two-letter code of the detected language. Short text,
// undetermined results, classifier failures and low confidence all yield
// Fallback. Codes without a two-letter form are returned as classified.
func (d *Detector) Detect(text string, minConfidence float64) (lang string) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < minDetectableRunes {
		return Fallback
	}

	defer func() {
		if recover() != nil {
			lang = Fallback
		}
	}()

	code, confidence, err := d.classifier.Classify(trimmed)
	if err != nil || code == "" || code == "und" {
		return Fallback
	}
	if confidence < minConfidence {
		return Fallback
	}
	if short, ok := iso6393ToBCP47[code]; ok {
		return short
	}
	return code
}

type whatlangClassifier struct{}

func (whatlangClassifier) Classify(text string) (string, float64, error) {
	info := whatlanggo.Detect(text)
	return info.Lang.Iso6393(), info.Confidence, nil
}

var iso6393ToBCP47 = map[string]string{
	"eng": "en",
	"spa": "es",
	"fra": "fr",
	"deu": "de",
	"ita": "it",
	"por": "pt",
	"rus": "ru",
	"jpn": "ja",
	"kor": "ko",
	"zho": "zh",
	"cmn": "zh",
	"ara": "ar",
	"arb": "ar",
	"hin": "hi",
	"ben": "bn",
	"nld": "nl",
	"pol": "pl",
	"tur": "tr",
	"vie": "vi",
	"tha": "th",
	"swe": "sv",
	"dan": "da",
	"fin": "fi",
	"nor": "no",
	"nob": "no",
	"ces": "cs",
	"ron": "ro",
	"hun": "hu",
	"ell": "el",
	"heb": "he",
	"ukr": "uk",
	"cat": "ca",
	"ind": "id",
	"msa": "ms",
	"fas": "fa",
	"pes": "fa",
}
