package links

import (
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
)

// PathLookup resolves a uid of the current course to its document path
// (no extension, no leading slash, directories ending in /_index).
type PathLookup interface {
	Path(uid string) (string, bool)
}

// markerPattern matches legacy resolve-by-uid markers: ./resolveuid/<uid>,
// optionally with ../ hops in front.
var markerPattern = regexp.MustCompile(`(?:\.{1,2}/)+resolveuid/([0-9a-fA-F]{32})`)

// legacyHostPattern matches the legacy site host prefix on absolute links.
var legacyHostPattern = regexp.MustCompile(`(?i)^https?://ocw\.mit\.edu`)

// schemePattern matches targets that carry a scheme (mailto:, https:, ...).
var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// Rewriter rewrites links in rich text of one course. It is read-only after
// construction and owns no state shared with other courses.
type Rewriter struct {
	courseID    string
	paths       PathLookup
	crossCourse map[string]string
	opts        Options
	legacy      map[string]legacyTarget
	logger      *slog.Logger
}

type legacyTarget struct {
	uid         string
	missingFile bool
}

// NewRewriter builds a rewriter for c. crossCourse maps uids of other courses
// (course and course-home uids) to their slug; it may be nil.
func NewRewriter(c *course.Course, paths PathLookup, crossCourse map[string]string, opts Options) *Rewriter {
	r := &Rewriter{
		courseID:    c.ShortURL,
		paths:       paths,
		crossCourse: crossCourse,
		opts:        opts,
		legacy:      make(map[string]legacyTarget),
		logger:      slog.Default(),
	}

	pages := make(map[string]*course.Page, len(c.Pages))
	for i := range c.Pages {
		p := &c.Pages[i]
		pages[p.UID] = p
		if lp := p.LegacyPath(); lp != "" {
			r.legacy[normalizeLegacy(lp)] = legacyTarget{uid: p.UID}
		}
	}
	for i := range c.Files {
		f := &c.Files[i]
		lp := f.LegacyPath(pages[f.ParentUID])
		if lp == "" {
			continue
		}
		r.legacy[normalizeLegacy(lp)] = legacyTarget{uid: f.UID, missingFile: !f.HasLocation()}
	}
	return r
}

// WithLogger sets the logger used for recoverable link defects.
func (r *Rewriter) WithLogger(logger *slog.Logger) *Rewriter {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Rewrite resolves uid markers, then relative links, then storage URLs.
// current is the page the text belongs to; it may be nil.
func (r *Rewriter) Rewrite(text string, current *course.Page) string {
	if text == "" {
		return ""
	}
	text = r.ResolveUIDs(text)
	text = r.ResolveRelativeLinks(text, current)
	return StripStoragePrefix(text, r.opts)
}

// StripStoragePrefix applies the rewriter's storage options to s.
func (r *Rewriter) StripStoragePrefix(s string) string {
	return StripStoragePrefix(s, r.opts)
}

// ResolveUIDs replaces resolve-by-uid markers. Markers for pages and files of
// the current course become placeholder brackets around
// courses/<course id>/<path>; markers for other known courses become
// /courses/<slug>. Unknown markers are left verbatim.
func (r *Rewriter) ResolveUIDs(text string) string {
	if !strings.Contains(text, "resolveuid/") {
		return text
	}
	return markerPattern.ReplaceAllStringFunc(text, func(marker string) string {
		uid := strings.ToLower(markerPattern.FindStringSubmatch(marker)[1])
		if p, ok := r.paths.Path(uid); ok {
			return Wrap(r.sitePath(p))
		}
		if slug, ok := r.crossCourse[uid]; ok && slug != "" {
			return "/courses/" + slug
		}
		r.logger.Debug("Unresolved uid marker left in text",
			logfields.Course(r.courseID), logfields.UID(uid))
		return marker
	})
}

// ResolveRelativeLinks rewrites href and src attributes that point at the
// legacy location of a page or file of this course. Targets without a
// leading slash are taken relative to the legacy location of current; with
// a nil current only root-absolute targets are resolved.
func (r *Rewriter) ResolveRelativeLinks(text string, current *course.Page) string {
	if len(r.legacy) == 0 {
		return text
	}
	if lower := strings.ToLower(text); !strings.Contains(lower, "href") && !strings.Contains(lower, "src") {
		return text
	}
	base := legacyBase(current)

	var out strings.Builder
	out.Grow(len(text))
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// Tokenizer gave up; keep the remainder as-is.
				out.Write(z.Raw())
			}
			break
		}
		raw := string(z.Raw())
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			raw = r.rewriteTag(raw, z, base)
		}
		out.WriteString(raw)
	}
	return out.String()
}

func (r *Rewriter) rewriteTag(raw string, z *html.Tokenizer, base string) string {
	_, hasAttr := z.TagName()
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		name := string(key)
		if name != "href" && name != "src" {
			continue
		}
		value := string(val)
		replacement, ok := r.resolveLegacy(value, base)
		if !ok {
			continue
		}
		raw = replaceAttrValue(raw, name, value, replacement)
	}
	return raw
}

func (r *Rewriter) resolveLegacy(value, base string) (string, bool) {
	target := legacyHostPattern.ReplaceAllString(strings.TrimSpace(value), "")
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	switch {
	case target == "" || strings.HasPrefix(target, "//") || strings.Contains(target, PlaceholderStart):
		return "", false
	case strings.HasPrefix(target, "/"):
		target = path.Clean(target)
	case schemePattern.MatchString(target) || base == "":
		return "", false
	default:
		target = path.Join(base, target)
	}
	t, ok := r.legacy[normalizeLegacy(target)]
	if !ok {
		return "", false
	}
	if t.missingFile {
		r.logger.Warn("Link to file without storage location left unresolved",
			logfields.Course(r.courseID), logfields.UID(t.uid), logfields.URL(value))
		return "", false
	}
	p, ok := r.paths.Path(t.uid)
	if !ok {
		return "", false
	}
	return Wrap(r.sitePath(p)), true
}

func (r *Rewriter) sitePath(p string) string {
	return "courses/" + r.courseID + "/" + strings.TrimPrefix(p, "/")
}

// legacyBase is the legacy directory relative links on p resolve against.
func legacyBase(p *course.Page) string {
	if p == nil || p.URL == "" {
		return ""
	}
	u := legacyHostPattern.ReplaceAllString(p.URL, "")
	if ext := strings.ToLower(path.Ext(u)); ext == ".htm" || ext == ".html" {
		return path.Dir(u)
	}
	return strings.TrimRight(u, "/")
}

// replaceAttrValue swaps one attribute value inside a raw tag, handling the
// quoting styles the tokenizer accepts. name is lower case; the attribute
// name in raw may use any case.
func replaceAttrValue(raw, name, oldVal, newVal string) string {
	lower := asciiLower(raw)
	for _, v := range []string{oldVal, html.EscapeString(oldVal)} {
		for _, q := range []string{`"`, `'`, ""} {
			prefix := name + "=" + q
			for from := 0; ; {
				i := strings.Index(lower[from:], prefix)
				if i < 0 {
					break
				}
				at := from + i
				start := at + len(prefix)
				from = start
				if at == 0 || !isSpace(raw[at-1]) || !strings.HasPrefix(raw[start:], v+q) {
					continue
				}
				end := start + len(v) + len(q)
				if q == "" && end < len(raw) && !isSpace(raw[end]) && raw[end] != '>' && raw[end] != '/' {
					continue
				}
				nq := q
				if nq == "" {
					nq = `"`
				}
				return raw[:start-len(q)] + nq + newVal + nq + raw[end:]
			}
		}
	}
	return raw
}

// asciiLower lower-cases ASCII letters only, keeping byte offsets intact.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func normalizeLegacy(p string) string {
	p = strings.TrimSuffix(p, "/index.htm")
	p = strings.TrimSuffix(p, "/index.html")
	return strings.ToLower(strings.TrimRight(p, "/"))
}
