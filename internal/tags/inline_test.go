package tags

import (
	"reflect"
	"testing"
)

func TestExtractInline(t *testing.T) {
	cases := []struct {
		name      string
		in        string
		wantClean string
		wantTags  []string
	}{
		{"no block", "Conversational model", "Conversational model", []string{}},
		{"simple block", "Conversational model (#ai #llm)", "Conversational model", []string{"ai", "llm"}},
		{"dedupe and lowercase", "Assistant tool (#AI #ai #Llm #nlp #NLP)", "Assistant tool", []string{"ai", "llm", "nlp"}},
		{"plain parentheses", "Collaborative design tool (beta)", "Collaborative design tool (beta)", []string{}},
		{"inline hashtags ignored", "Great tool #ai for teams (#collab)", "Great tool #ai for teams", []string{"collab"}},
		{"spaces", "Description with spaces   (   #ai    #nlp   )   ", "Description with spaces", []string{"ai", "nlp"}},
		{"separators kept", "- Conversational model — fast (#ai #chatbot)", "- Conversational model — fast", []string{"ai", "chatbot"}},
		{"block not trailing", "Tool (#ai) with more text", "Tool (#ai) with more text", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clean, got := ExtractInline(tc.in)
			if clean != tc.wantClean {
				t.Fatalf("clean = %q, want %q", clean, tc.wantClean)
			}
			if got == nil {
				t.Fatalf("tags must never be nil")
			}
			if !reflect.DeepEqual(got, tc.wantTags) {
				t.Fatalf("tags = %v, want %v", got, tc.wantTags)
			}
		})
	}
}

func TestHasBlock(t *testing.T) {
	if !HasBlock("x (#a)") {
		t.Fatalf("expected block")
	}
	if HasBlock("x (a)") {
		t.Fatalf("unexpected block")
	}
}
