package formatter

import (
	"regexp"
	"strings"
)

var (
	h1Pattern         = regexp.MustCompile(`(?i)<h1[^>]*>(.*?)</h1>`)
	h2Pattern         = regexp.MustCompile(`(?i)<h2[^>]*>(.*?)</h2>`)
	h3Pattern         = regexp.MustCompile(`(?i)<h3[^>]*>(.*?)</h3>`)
	strongPattern     = regexp.MustCompile(`(?i)<(?:strong|b)[^>]*>(.*?)</(?:strong|b)>`)
	emPattern         = regexp.MustCompile(`(?i)<(?:em|i)[^>]*>(.*?)</(?:em|i)>`)
	anchorPattern     = regexp.MustCompile(`(?i)<a[^>]+href=["']([^"']+)["'][^>]*>(.*?)</a>`)
	listItemPattern   = regexp.MustCompile(`(?i)<li[^>]*>(.*?)</li>`)
	listWrapPattern   = regexp.MustCompile(`(?i)</?[uo]l[^>]*>`)
	codePattern       = regexp.MustCompile(`(?i)<code[^>]*>(.*?)</code>`)
	prePattern        = regexp.MustCompile(`(?is)<pre[^>]*>(.*?)</pre>`)
	imgAltSrcPattern  = regexp.MustCompile(`(?i)<img[^>]+alt=["']([^"']*)["'][^>]*src=["']([^"']+)["'][^>]*/?>`)
	imgSrcAltPattern  = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*alt=["']([^"']*)["'][^>]*/?>`)
	imgBarePattern    = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*/?>`)
	paragraphPattern  = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	brPattern         = regexp.MustCompile(`(?i)<br\s*/?>`)
	leftoverTag       = regexp.MustCompile(`<[^>]*>`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
	emptyParaPattern  = regexp.MustCompile(`(?i)<p[^>]*>\s*</p>`)
	scriptPattern     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	stylePattern      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
)

// HTMLToMarkdown performs a basic HTML to Markdown conversion covering the
// elements the content store actually emits: headings, emphasis, links,
// lists, code, images, paragraphs and line breaks.
func HTMLToMarkdown(html string) string {
	md := html

	md = h1Pattern.ReplaceAllString(md, "# $1")
	md = h2Pattern.ReplaceAllString(md, "## $1")
	md = h3Pattern.ReplaceAllString(md, "### $1")

	md = strongPattern.ReplaceAllString(md, "**$1**")
	md = emPattern.ReplaceAllString(md, "*$1*")

	md = anchorPattern.ReplaceAllString(md, "[$2]($1)")

	md = listItemPattern.ReplaceAllString(md, "- $1")
	md = listWrapPattern.ReplaceAllString(md, "")

	md = prePattern.ReplaceAllString(md, "```\n$1\n```")
	md = codePattern.ReplaceAllString(md, "`$1`")

	md = imgSrcAltPattern.ReplaceAllString(md, "![$2]($1)")
	md = imgAltSrcPattern.ReplaceAllString(md, "![$1]($2)")
	md = imgBarePattern.ReplaceAllString(md, "![]($1)")

	md = paragraphPattern.ReplaceAllString(md, "$1\n\n")
	md = brPattern.ReplaceAllString(md, "\n")

	md = leftoverTag.ReplaceAllString(md, "")
	md = blankLinesPattern.ReplaceAllString(md, "\n\n")

	return strings.TrimSpace(md)
}

// cleanHTML strips empty paragraphs and collapses excess whitespace for
// platforms that accept full HTML.
func cleanHTML(html string) string {
	html = emptyParaPattern.ReplaceAllString(html, "")
	html = blankLinesPattern.ReplaceAllString(html, "\n\n")
	return strings.TrimSpace(html)
}

// cleanHTMLForEmail additionally drops scripts and styles that email
// clients refuse to render.
func cleanHTMLForEmail(html string) string {
	html = scriptPattern.ReplaceAllString(html, "")
	html = stylePattern.ReplaceAllString(html, "")
	return cleanHTML(html)
}
