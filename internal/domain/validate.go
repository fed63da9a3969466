package domain

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// TextCodeValidationFailed tags every domain validation error.
const TextCodeValidationFailed = "DOMAIN_VALIDATION_FAILED"

var (
	errBlank       = errors.New("must not be blank")
	errAbsoluteURL = errors.New("must be an absolute URL")
	errTimestamp   = errors.New("must be an RFC 3339 UTC timestamp")
)

// Validate checks the structural rules of d and that every item references
// an existing section. All issues are reported together in one go-errors
// validation error.
func Validate(d *Domain) error {
	if d == nil {
		return validationError(fieldError("domain", "domain is required", nil))
	}

	var fields []goerrors.FieldError
	if err := d.Validate(); err != nil {
		fields = append(fields, flattenValidation("", err)...)
	}
	fields = append(fields, referentialIssues(d)...)

	if len(fields) == 0 {
		return nil
	}
	return validationError(fields...)
}

// Validate implements validation.Validatable.
func (d Domain) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.SchemaVersion, validation.Required, validation.In(SchemaVersion).Error("must be 1")),
		validation.Field(&d.Meta),
		validation.Field(&d.Sections),
		validation.Field(&d.Items),
	)
}

// Validate implements validation.Validatable.
func (m Meta) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Source, validation.Required),
		validation.Field(&m.GeneratedAt, validation.Required, validation.By(rfc3339UTC)),
	)
}

// Validate implements validation.Validatable.
func (s Section) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.By(notBlank)),
		validation.Field(&s.Title, validation.By(notBlank)),
		validation.Field(&s.Depth, validation.Min(0)),
		validation.Field(&s.Order, validation.Min(0)),
		validation.Field(&s.Path, validation.By(notBlank), validation.By(func(value any) error {
			if want := sectionPath(s.ParentID, s.ID); value != want {
				return fmt.Errorf("must equal %q", want)
			}
			return nil
		})),
	)
}

// Validate implements validation.Validatable.
func (i Item) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ID, validation.By(notBlank)),
		validation.Field(&i.SectionID, validation.By(notBlank)),
		validation.Field(&i.Title, validation.By(notBlank)),
		validation.Field(&i.URL, validation.By(absoluteURL)),
		validation.Field(&i.Order, validation.Min(0)),
		validation.Field(&i.Tags, validation.NotNil),
	)
}

func referentialIssues(d *Domain) []goerrors.FieldError {
	known := make(map[string]struct{}, len(d.Sections))
	for _, section := range d.Sections {
		known[section.ID] = struct{}{}
	}

	var out []goerrors.FieldError
	for idx, item := range d.Items {
		if _, ok := known[item.SectionID]; ok {
			continue
		}
		out = append(out, fieldError(
			fmt.Sprintf("items.%d.sectionId", idx),
			fmt.Sprintf("item.sectionId %q does not exist in sections", item.SectionID),
			item.SectionID,
		))
	}
	return out
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
}

func absoluteURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() {
		return errAbsoluteURL
	}
	if (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host == "" {
		return errAbsoluteURL
	}
	return nil
}

func rfc3339UTC(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	if !strings.HasSuffix(raw, "Z") {
		return errTimestamp
	}
	if _, err := time.Parse(time.RFC3339Nano, raw); err != nil {
		return errTimestamp
	}
	return nil
}

// flattenValidation converts nested ozzo errors into field errors with
// dotted paths, in a stable order.
func flattenValidation(prefix string, err error) []goerrors.FieldError {
	var nested validation.Errors
	if !errors.As(err, &nested) {
		return []goerrors.FieldError{fieldError(prefix, err.Error(), nil)}
	}

	keys := make([]string, 0, len(nested))
	for key := range nested {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		ai, aErr := strconv.Atoi(keys[a])
		bi, bErr := strconv.Atoi(keys[b])
		if aErr == nil && bErr == nil {
			return ai < bi
		}
		return keys[a] < keys[b]
	})

	var out []goerrors.FieldError
	for _, key := range keys {
		if nested[key] == nil {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		out = append(out, flattenValidation(path, nested[key])...)
	}
	return out
}

func fieldError(field, message string, value any) goerrors.FieldError {
	return goerrors.FieldError{Field: field, Message: message, Value: value}
}

func validationError(fields ...goerrors.FieldError) error {
	return goerrors.NewValidation("domain validation failed", fields...).
		WithTextCode(TextCodeValidationFailed)
}
