package language

import (
	"errors"
	"testing"
)

const longEnough = "this sentence is comfortably longer than thirty characters"

func TestDetectShortTextFallsBack(t *testing.T) {
	called := false
	d := NewDetector(WithClassifier(ClassifierFunc(func(string) (string, float64, error) {
		called = true
		return "spa", 1, nil
	})))

	for _, text := range []string{"", "Hi", "   Test   ", "short but not thirty"} {
		if got := d.Detect(text, 0.5); got != Fallback {
			t.Fatalf("Detect(%q) = %q, want %q", text, got, Fallback)
		}
	}
	if called {
		t.Fatalf("classifier must not run on short text")
	}
}

func TestDetectMapsCodes(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"spa", "es"},
		{"por", "pt"},
		{"fra", "fr"},
		{"cmn", "zh"},
		{"nob", "no"},
		{"pes", "fa"},
		{"epo", "epo"},
	}
	for _, tc := range cases {
		d := NewDetector(WithClassifier(ClassifierFunc(func(string) (string, float64, error) {
			return tc.code, 0.9, nil
		})))
		if got := d.Detect(longEnough, 0.5); got != tc.want {
			t.Fatalf("code %q: got %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestDetectFallbacks(t *testing.T) {
	cases := map[string]Classifier{
		"undetermined": ClassifierFunc(func(string) (string, float64, error) { return "", 0, nil }),
		"und":          ClassifierFunc(func(string) (string, float64, error) { return "und", 1, nil }),
		"low":          ClassifierFunc(func(string) (string, float64, error) { return "spa", 0.2, nil }),
		"error":        ClassifierFunc(func(string) (string, float64, error) { return "", 0, errors.New("boom") }),
		"panic":        ClassifierFunc(func(string) (string, float64, error) { panic("boom") }),
	}
	for name, c := range cases {
		if got := NewDetector(WithClassifier(c)).Detect(longEnough, 0.5); got != Fallback {
			t.Fatalf("%s: got %q, want %q", name, got, Fallback)
		}
	}
}

func TestDetectWithDefaultClassifier(t *testing.T) {
	english := "This is a sample text in English. It contains multiple sentences to help with language detection."
	if got := Detect(english); got != "en" {
		t.Fatalf("expected en, got %q", got)
	}
	if got := Detect("123 456 789"); got != "en" {
		t.Fatalf("expected fallback for digits, got %q", got)
	}
}

func TestNormalizeBCP47(t *testing.T) {
	cases := map[string]string{
		"en":         "en",
		"ES":         "es",
		"en-US":      "en-us",
		"pt-BR":      "pt-br",
		"zh-CN":      "zh-cn",
		"eng":        "eng",
		"por":        "por",
		"":           "en",
		"invalid123": "en",
		"x":          "en",
		"xx":         "xx",
		"zz-zz":      "zz-zz",
		"qaa-latn":   "qaa-latn",
		"en-us-x":    "en",
		"en_US":      "en",
		"  en  ":     "en",
		" en-US ":    "en-us",
	}
	for in, want := range cases {
		if got := NormalizeBCP47(in); got != want {
			t.Fatalf("NormalizeBCP47(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseBCP47ReportsInvalid(t *testing.T) {
	if _, ok := ParseBCP47("not a tag"); ok {
		t.Fatalf("expected invalid tag")
	}
	if got := Primary("pt-BR"); got != "pt" {
		t.Fatalf("Primary = %q", got)
	}
}
