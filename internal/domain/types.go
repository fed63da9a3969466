package domain

// SchemaVersion is the only domain document version produced and accepted.
const SchemaVersion = 1

// GeneratedAtLayout formats generation timestamps: RFC 3339, UTC,
// millisecond precision.
const GeneratedAtLayout = "2006-01-02T15:04:05.000Z"

// Section is a heading of level 2 or deeper. Depth 0 is a level-2 heading.
type Section struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	ParentID        *string `json:"parentId"`
	Depth           int     `json:"depth"`
	Order           int     `json:"order"`
	Path            string  `json:"path"`
	DescriptionHTML *string `json:"descriptionHtml"`
}

// Item is a list entry under the nearest enclosing section. IDs are unique
// within their section only.
type Item struct {
	ID              string   `json:"id"`
	SectionID       string   `json:"sectionId"`
	Title           string   `json:"title"`
	URL             string   `json:"url,omitempty"`
	Description     *string  `json:"description"`
	DescriptionHTML *string  `json:"descriptionHtml"`
	Order           int      `json:"order"`
	Tags            []string `json:"tags"`
}

// Meta describes the document a domain was built from.
type Meta struct {
	Title           *string        `json:"title,omitempty"`
	Description     *string        `json:"description,omitempty"`
	DescriptionHTML *string        `json:"descriptionHtml,omitempty"`
	GeneratedAt     string         `json:"generatedAt"`
	Source          string         `json:"source"`
	Language        *string        `json:"language,omitempty"`
	Frontmatter     map[string]any `json:"frontmatter,omitempty"`
}

// Domain is the validated, hierarchical form of an awesome list.
type Domain struct {
	Schema        string    `json:"$schema,omitempty"`
	SchemaVersion int       `json:"schemaVersion"`
	Meta          Meta      `json:"meta"`
	Sections      []Section `json:"sections"`
	Items         []Item    `json:"items"`
}

// SectionByID returns the first section with id.
func (d *Domain) SectionByID(id string) (Section, bool) {
	if d == nil {
		return Section{}, false
	}
	for _, section := range d.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}

// ItemsInSection returns the items that belong to sectionID in domain order.
func (d *Domain) ItemsInSection(sectionID string) []Item {
	if d == nil {
		return nil
	}
	var out []Item
	for _, item := range d.Items {
		if item.SectionID == sectionID {
			out = append(out, item)
		}
	}
	return out
}

func sectionPath(parentID *string, id string) string {
	if parentID != nil && *parentID != "" {
		return *parentID + "/" + id
	}
	return id
}
