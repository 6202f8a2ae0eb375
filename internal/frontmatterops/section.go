package frontmatterops

// SectionParams carries everything the section builder needs. Callers fill
// it from the page and its position in the tree.
type SectionParams struct {
	UID         string
	Title       string
	ShortTitle  string
	ListTitle   string
	TypeTag     string
	MenuName    string
	CourseID    string
	Description string
	// ListInLeftNav and IsRoot decide whether a menu entry is emitted.
	ListInLeftNav bool
	IsRoot        bool
	Weight        int
	// MenuParent is the menu identifier of the parent entry, if any.
	MenuParent string
	// MediaUIDs is only used for media gallery pages.
	MediaUIDs      []string
	IsMediaGallery bool
	Parent         ParentLink
	// Layout overrides the default layout, e.g. for instructor insights.
	Layout string
}

// SectionFrontMatter builds a section record. A menu entry is emitted only
// for left-nav pages and root sections.
func SectionFrontMatter(p SectionParams) Section {
	typeTag := p.TypeTag
	if typeTag == "" {
		typeTag = TypeCourse
	}

	s := Section{
		Title:       p.Title,
		LinkTitle:   p.ShortTitle,
		ListTitle:   p.ListTitle,
		UID:         CanonicalUID(p.UID),
		CourseID:    p.CourseID,
		Type:        typeTag,
		Layout:      p.Layout,
		Description: p.Description,
		ParentLink:  p.Parent,
	}

	if p.ListInLeftNav || p.IsRoot {
		name := p.MenuName
		if name == "" {
			name = firstNonEmpty(p.ShortTitle, p.Title)
		}
		s.Menu = Menu{
			p.CourseID: {
				Identifier: p.UID,
				Name:       name,
				Weight:     p.Weight,
				Parent:     p.MenuParent,
			},
		}
	}

	if p.IsMediaGallery && len(p.MediaUIDs) > 0 {
		s.Videos = append([]string(nil), p.MediaUIDs...)
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
