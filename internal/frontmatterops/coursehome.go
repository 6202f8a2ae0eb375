package frontmatterops

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/links"
)

// CourseHomeMenuWeight keeps the course home first in the course menu.
const CourseHomeMenuWeight = -10

var departmentCaser = cases.Title(language.English)

// Department title-cases the department segment of the legacy course URL.
func Department(c *course.Course) string {
	slug := c.DepartmentSlug()
	if slug == "" {
		return ""
	}
	return departmentCaser.String(strings.ReplaceAll(slug, "-", " "))
}

// CourseHomeFrontMatter builds the course home record. The title is always
// empty; templates title the home page.
func CourseHomeFrontMatter(c *course.Course, home *course.Page, opts links.Options) CourseHome {
	instructors := make([]string, 0, len(c.Instructors))
	for _, in := range c.Instructors {
		instructors = append(instructors, in.DisplayName())
	}

	uid := c.UID
	if home != nil {
		uid = home.UID
	}

	return CourseHome{
		Title:              "",
		UID:                CanonicalUID(uid),
		CourseID:           c.ShortURL,
		Type:               TypeCourse,
		Layout:             LayoutCourseHome,
		CourseTitle:        c.Title,
		CourseDescription:  c.Description,
		CourseImageURL:     links.StripStoragePrefix(c.ImageSrc, opts),
		CourseImageAlt:     c.ImageAltText,
		CourseImageCaption: c.ImageCaption,
		CourseInfo: CourseInfo{
			Instructors:  instructors,
			Department:   Department(c),
			Topics:       ConsolidateTopics(c.Collections),
			CourseNumber: c.CourseNumber(),
			Term:         c.Term(),
			Level:        string(c.CourseLevel),
		},
		Menu: Menu{
			c.ShortURL: {
				Identifier: uid,
				Name:       "Course Home",
				Weight:     CourseHomeMenuWeight,
			},
		},
	}
}
