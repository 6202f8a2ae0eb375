package sitetree

import (
	"fmt"
	"strings"
)

var shortcodeEscaper = strings.NewReplacer(`"`, "&quot;", "\n", " ", "\r", "")

func attr(s string) string {
	return shortcodeEscaper.Replace(strings.TrimSpace(s))
}

type galleryImage struct {
	href    string
	caption string
	credit  string
}

// imageGallery renders an image-gallery block with one item per image.
func imageGallery(pageUID, baseURL string, images []galleryImage) string {
	if len(images) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "{{< image-gallery id=\"%s_nanogallery2\" baseUrl=\"%s\" >}}\n", pageUID, attr(baseURL))
	for _, img := range images {
		fmt.Fprintf(&b, "{{< image-gallery-item href=\"%s\" data-ngdesc=\"%s\" text=\"%s\" >}}\n",
			attr(img.href), attr(img.caption), attr(img.credit))
	}
	b.WriteString("{{< /image-gallery >}}")
	return b.String()
}

type galleryVideo struct {
	href        string
	section     string
	title       string
	description string
	thumbnail   string
}

// videoGallery renders one video-gallery-item per media item.
func videoGallery(videos []galleryVideo) string {
	if len(videos) == 0 {
		return ""
	}
	items := make([]string, 0, len(videos))
	for _, v := range videos {
		items = append(items, fmt.Sprintf(
			"{{< video-gallery-item href=\"%s\" section=\"%s\" title=\"%s\" description=\"%s\" thumbnail=\"%s\" >}}",
			attr(v.href), attr(v.section), attr(v.title), attr(v.description), attr(v.thumbnail)))
	}
	return strings.Join(items, "\n")
}
