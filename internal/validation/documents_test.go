package validation

import (
	"errors"
	"strings"
	"testing"
)

const validDomain = `{
  "schemaVersion": 1,
  "meta": {"title": "Awesome", "generatedAt": "2024-01-02T03:04:05.000Z", "source": "local:/README.md"},
  "sections": [{"id": "tools", "title": "Tools", "parentId": null, "depth": 0, "order": 0, "path": "tools", "descriptionHtml": null}],
  "items": [{"id": "github", "sectionId": "tools", "title": "GitHub", "url": "https://github.com", "description": "hosts code", "descriptionHtml": "<p>hosts code (#git)</p>", "order": 0, "tags": ["git"]}]
}`

func TestEmbeddedSchemasCompile(t *testing.T) {
	for _, name := range []string{DomainSchemaName, IndexSchemaName} {
		raw, err := SchemaDocument(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if _, err := CompileSchema(name, raw); err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
	}
}

func TestValidateDomainJSON(t *testing.T) {
	if err := ValidateDomainJSON([]byte(validDomain)); err != nil {
		t.Fatalf("expected valid domain, got %v", err)
	}
}

func TestValidateDomainJSONReportsIssues(t *testing.T) {
	cases := map[string]struct {
		payload  string
		location string
	}{
		"missing source": {
			payload:  strings.Replace(validDomain, `, "source": "local:/README.md"`, "", 1),
			location: "/meta",
		},
		"relative url": {
			payload:  strings.Replace(validDomain, `"https://github.com"`, `"github.com"`, 1),
			location: "/items/0/url",
		},
		"negative depth": {
			payload:  strings.Replace(validDomain, `"depth": 0`, `"depth": -1`, 1),
			location: "/sections/0/depth",
		},
		"wrong version": {
			payload:  strings.Replace(validDomain, `"schemaVersion": 1`, `"schemaVersion": 2`, 1),
			location: "/schemaVersion",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateDomainJSON([]byte(tc.payload))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !errors.Is(err, ErrSchemaValidation) {
				t.Fatalf("expected ErrSchemaValidation, got %v", err)
			}
			found := false
			for _, issue := range Issues(err) {
				if issue.Location == tc.location {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected issue at %s, got %+v", tc.location, Issues(err))
			}
		})
	}
}

func TestValidateIndexJSON(t *testing.T) {
	payload := `{
  "schemaVersion": 1,
  "meta": {"repo": "owner/repo", "ref": "main", "path": "README.md", "generatedAt": "2024-01-02T03:04:05.000Z", "fieldWeights": {"title": 2, "description": 1, "tags": 1.5}},
  "stats": {"docs": 1, "terms": 1},
  "docs": {"github": {"title": "GitHub", "url": "https://github.com", "sectionId": "tools"}},
  "terms": {"github": [{"id": "github", "f": 2}]}
}`
	if err := ValidateIndexJSON([]byte(payload)); err != nil {
		t.Fatalf("expected valid index, got %v", err)
	}

	broken := strings.Replace(payload, `"f": 2`, `"f": 0`, 1)
	if err := ValidateIndexJSON([]byte(broken)); err == nil {
		t.Fatalf("expected zero weight to be rejected")
	}
}

func TestValidateDomainJSONRejectsMalformedJSON(t *testing.T) {
	err := ValidateDomainJSON([]byte(`{"schemaVersion":`))
	var docErr *DocumentError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected DocumentError, got %v", err)
	}
	if docErr.Schema != DomainSchemaName || !strings.Contains(docErr.Error(), "invalid JSON") {
		t.Fatalf("unexpected error %q", docErr.Error())
	}
}

func TestValidateDomainJSONRejectsTrailingData(t *testing.T) {
	if err := ValidateDomainJSON([]byte(validDomain + " {}")); !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected trailing data to be rejected, got %v", err)
	}
}

func TestCompileSchemaRejectsBrokenSchema(t *testing.T) {
	_, err := CompileSchema("broken.json", []byte(`{"type": 12}`))
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}
