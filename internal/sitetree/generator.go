package sitetree

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatterops"
	"git.home.luguber.info/inful/coursebuilder/internal/links"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
	"git.home.luguber.info/inful/coursebuilder/internal/markdown"
)

// MenuWeightStep spaces sibling menu entries.
const MenuWeightStep = 10

// TextConverter converts rewritten HTML to Markdown.
type TextConverter interface {
	Convert(html string) (string, error)
}

// Options configure a Generator.
type Options struct {
	Links links.Options
	// CrossCourse maps uids of other courses to their slug.
	CrossCourse map[string]string
	// Converter defaults to markdown.NewConverter().
	Converter TextConverter
	Logger    *slog.Logger
}

// Generator walks one course graph and emits its documents.
type Generator struct {
	course    *course.Course
	table     *Table
	opts      Options
	rewriter  *links.Rewriter
	converter TextConverter
	logger    *slog.Logger
}

func NewGenerator(c *course.Course, table *Table, opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(logfields.Course(c.ShortURL))

	conv := opts.Converter
	if conv == nil {
		conv = markdown.NewConverter()
	}

	return &Generator{
		course:    c,
		table:     table,
		opts:      opts,
		rewriter:  links.NewRewriter(c, table, opts.CrossCourse, opts.Links).WithLogger(logger),
		converter: conv,
		logger:    logger,
	}
}

// Generate resolves c and emits its documents.
func Generate(c *course.Course, opts Options) ([]*Node, error) {
	t, err := Resolve(c)
	if err != nil {
		return nil, err
	}
	return NewGenerator(c, t, opts).Generate()
}

// Build returns Generate plus the scaffold documents.
func (g *Generator) Build() ([]*Node, error) {
	nodes, err := g.Generate()
	if err != nil {
		return nil, err
	}
	scaffold, err := Scaffold(g.course)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryBuild, "failed to render scaffold").
			WithContext("course", g.course.ShortURL).Build()
	}
	return append(nodes, scaffold...), nil
}

// Generate emits the course home, the course-home resources and then every
// root section in source order. The result is nested; see Flatten.
func (g *Generator) Generate() ([]*Node, error) {
	for _, uid := range g.table.Orphans() {
		g.logger.Warn("Resource parent not placed, skipping", logfields.UID(uid))
	}

	homeEntry, ok := g.table.Lookup(g.table.Home())
	if !ok {
		return nil, errors.IntegrityError("course home page not found").
			WithContext("course", g.course.ShortURL).Build()
	}

	home, err := g.courseHome(homeEntry)
	if err != nil {
		return nil, err
	}
	nodes := []*Node{home}

	resources, err := g.resources(homeEntry, false, false)
	if err != nil {
		return nil, err
	}
	for _, r := range resources {
		nodes = append(nodes, r.Node)
	}

	for i, uid := range g.table.Roots() {
		n, err := g.visit(uid, (i+1)*MenuWeightStep, false, false)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (g *Generator) courseHome(e *Entry) (*Node, error) {
	fm := frontmatterops.CourseHomeFrontMatter(g.course, e.Page, g.opts.Links)
	body := g.body(e.Page, e.Page.Text, e.Page.BottomText)
	return g.render(IndexName+".md", fm, body, e.UID)
}

// visit emits the document of page uid and, for directory pages, its
// children, files and media. insights is set below an instructor insights
// section; parentInMenu tells whether the parent got a menu entry.
func (g *Generator) visit(uid string, weight int, insights, parentInMenu bool) (*Node, error) {
	e, _ := g.table.Lookup(uid)
	p := e.Page
	insights = insights || p.IsInstructorInsights()

	params := frontmatterops.SectionParams{
		UID:            p.UID,
		Title:          p.Title,
		ShortTitle:     p.ShortPageTitle,
		ListTitle:      p.ListTitle,
		TypeTag:        frontmatterops.TypeCourse,
		CourseID:       g.course.ShortURL,
		Description:    g.text(p, p.UID, p.Description),
		ListInLeftNav:  p.ListInLeftNav,
		IsRoot:         e.IsRoot,
		Weight:         weight,
		IsMediaGallery: p.IsMediaGallery,
		Parent:         g.parentLink(e.ParentUID),
	}
	if parentInMenu && !e.IsRoot {
		params.MenuParent = e.ParentUID
	}
	if insights {
		params.Layout = frontmatterops.LayoutInstructorInsights
	}
	if p.IsMediaGallery {
		for _, m := range g.table.Media(uid) {
			params.MediaUIDs = append(params.MediaUIDs, frontmatterops.CanonicalUID(m))
		}
	}
	fm := frontmatterops.SectionFrontMatter(params)
	inMenu := fm.Menu != nil

	body := g.body(p, p.Text, p.BottomText)
	if gallery := g.galleries(e); gallery != "" {
		body = joinBlocks(body, gallery)
	}

	n, err := g.render(e.Path+".md", fm, body, uid)
	if err != nil || !e.IsDirectory {
		return n, err
	}

	n.Children = []*Node{}
	for i, child := range g.table.Children(uid) {
		cn, err := g.visit(child, (i+1)*MenuWeightStep, insights, inMenu)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, cn)
	}

	resources, err := g.resources(e, true, insights)
	if err != nil {
		return nil, err
	}
	n.Files, n.Media = []*Node{}, []*Node{}
	for _, r := range resources {
		if r.kind == KindMedia {
			n.Media = append(n.Media, r.Node)
		} else {
			n.Files = append(n.Files, r.Node)
		}
	}
	return n, nil
}

type resourceNode struct {
	*Node
	kind Kind
}

// resources emits the file and media documents of a page. Course home
// resources carry no parent linkage and are rooted at "/". Below an
// instructor insights section every resource takes the insights layout.
func (g *Generator) resources(e *Entry, linkParent, insights bool) ([]resourceNode, error) {
	params := frontmatterops.ResourceParams{CourseID: g.course.ShortURL, Links: g.opts.Links}
	if linkParent {
		params.Parent = g.parentLink(e.UID)
	}
	if insights {
		params.Layout = frontmatterops.LayoutInstructorInsights
	}

	var out []resourceNode
	for _, uid := range g.table.Files(e.UID) {
		fe, _ := g.table.Lookup(uid)
		fp := params
		if !linkParent && strings.EqualFold(fe.File.FileType, "application/pdf") {
			fp.Layout = frontmatterops.LayoutPDF
		}
		var record any
		if fe.File.ResourceType() == course.ResourceImage {
			record = frontmatterops.ImageFrontMatter(fe.File, fp)
		} else {
			record = frontmatterops.FileFrontMatter(fe.File, fp)
		}
		n, err := g.render(fe.Path+".md", record, "", uid)
		if err != nil {
			return nil, err
		}
		out = append(out, resourceNode{Node: n, kind: KindFile})
	}
	for _, uid := range g.table.Media(e.UID) {
		me, _ := g.table.Lookup(uid)
		fm := frontmatterops.VideoFrontMatter(me.Media, params)
		fm.Description = g.text(e.Page, uid, me.Media.Description)
		n, err := g.render(me.Path+".md", fm, "", uid)
		if err != nil {
			return nil, err
		}
		out = append(out, resourceNode{Node: n, kind: KindMedia})
	}
	return out, nil
}

// parentLink returns the linkage for a container, empty for the course home
// and the course root.
func (g *Generator) parentLink(parentUID string) frontmatterops.ParentLink {
	if parentUID == "" || parentUID == g.table.Home() || parentUID == g.course.UID {
		return frontmatterops.ParentLink{}
	}
	pe, ok := g.table.Lookup(parentUID)
	if !ok || pe.Page == nil {
		return frontmatterops.ParentLink{}
	}
	return frontmatterops.ParentLink{
		ParentUID:   frontmatterops.CanonicalUID(pe.Page.UID),
		ParentTitle: pe.Page.Title,
		ParentType:  pe.Page.Type,
	}
}

func (g *Generator) galleries(e *Entry) string {
	var blocks []string
	if e.Page.IsImageGallery {
		var images []galleryImage
		for _, uid := range g.table.Files(e.UID) {
			fe, _ := g.table.Lookup(uid)
			if fe.File.ResourceType() != course.ResourceImage {
				continue
			}
			images = append(images, galleryImage{
				href:    g.rewriter.StripStoragePrefix(fe.File.FileLocation),
				caption: fe.File.Caption,
				credit:  fe.File.Credit,
			})
		}
		blocks = append(blocks, imageGallery(e.UID, g.opts.Links.StaticPrefix, images))
	}
	if e.Page.IsMediaGallery {
		var videos []galleryVideo
		for _, uid := range g.table.Media(e.UID) {
			me, _ := g.table.Lookup(uid)
			videos = append(videos, galleryVideo{
				href:        strings.TrimPrefix(me.Path, "/"),
				section:     e.Page.Title,
				title:       me.Media.Title,
				description: me.Media.Description,
				thumbnail:   me.Media.ThumbnailURL(),
			})
		}
		blocks = append(blocks, videoGallery(videos))
	}
	return joinBlocks(blocks...)
}

// body converts the top and bottom text of a page.
func (g *Generator) body(p *course.Page, text, bottom string) string {
	return joinBlocks(g.text(p, p.UID, text), g.text(p, p.UID, bottom))
}

// text rewrites links in one HTML fragment found on page p and converts it.
// A conversion error falls back to the rewritten HTML.
func (g *Generator) text(p *course.Page, uid, html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	rewritten := g.rewriter.Rewrite(html, p)
	out, err := g.converter.Convert(rewritten)
	if err != nil {
		g.logger.Warn("Text conversion failed, keeping HTML",
			logfields.UID(uid), logfields.Error(err))
		out = markdown.UnescapeBackticks(rewritten)
	}
	out = links.Finalize(out)
	for _, l := range markdown.AuditLinks([]byte(out)) {
		g.logger.Warn("Unresolved uid link", logfields.UID(uid), logfields.URL(l.Destination))
	}
	return strings.TrimSpace(out)
}

func (g *Generator) render(name string, record any, body, uid string) (*Node, error) {
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	data, err := frontmatter.Render(record, body)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryBuild, "failed to render document").
			WithContext("course", g.course.ShortURL).
			WithContext("uid", uid).
			WithContext("path", name).Build()
	}
	return &Node{Name: name, Data: string(data)}, nil
}

func joinBlocks(blocks ...string) string {
	var parts []string
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, "\n\n")
}
