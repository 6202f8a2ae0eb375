package sitetree

import (
	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatterops"
)

// Scaffold returns the boilerplate documents every course gets regardless of
// its content: the search page and the sections index.
func Scaffold(c *course.Course) ([]*Node, error) {
	pages := []struct {
		name   string
		record frontmatterops.Static
	}{
		{
			name: "search/_index.md",
			record: frontmatterops.Static{
				Title: "Search", CourseID: c.ShortURL, Type: frontmatterops.TypeCourse, Layout: frontmatterops.LayoutSearch,
			},
		},
		{
			name: SectionsDir + "/_index.md",
			record: frontmatterops.Static{
				Title: c.Title, CourseID: c.ShortURL, Type: frontmatterops.TypeCourse, Layout: frontmatterops.LayoutCourseIndex,
			},
		},
	}

	nodes := make([]*Node, 0, len(pages))
	for _, p := range pages {
		data, err := frontmatter.Render(p.record, "")
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &Node{Name: p.name, Data: string(data)})
	}
	return nodes, nil
}
