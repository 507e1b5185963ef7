package processor

import (
	"strings"

	"golang.org/x/net/html"
)

// Stale cross-references left over from the old site. Keys are matched verbatim
// against href values, including pre-escaped ampersands.
var urlReplacements = map[string]string{
	"https://www.imabi.net/timei.htm":                 "https://imabi.org/counters-iii-time-part-i-%e6%97%a5-%e9%80%b1%e9%96%93-%e6%9c%88-%e5%b9%b4-etc/",
	"https://www.imabi.net/theseasons.htm":            "https://imabi.org/the-seasons%e3%80%80%e6%98%a5%e5%a4%8f%e7%a7%8b%e5%86%ac/",
	"https://www.imabi.net/the-affix-gu":              "https://imabi.org/the-verbal-affix-%ef%bd%9e%e3%81%90-%ef%bd%9e%e3%82%89%e3%81%90%e3%83%bb%e3%82%84%e3%81%90/",
	"https://www.imabi.net/nivskara.htm":              "https://imabi.org/the-particle-%e3%81%8b%e3%82%89/",
	"https://www.imabi.net/l55theparticlenagara.htm":  "https://imabi.org/the-particles-%e3%81%a4%e3%81%a4-%e3%81%aa%e3%81%8c%e3%82%89/",
	"https://www.imabi.net/l279yotsugana.htm":         "https://imabi.org/yotsugana/",
	"https://www.imabi.net/l216nounspronouns.htm#825855643": "https://imabi.org/reflexive-pronouns/",
	"https://www.imabi.net/l171kimigayoiroha.htm":     "https://imabi.org/the-%e5%90%9b%e3%81%8c%e4%bb%a3-%e3%81%84%e3%82%8d%e3%81%af/",
	"https://www.imabi.net/l12regularverbs.htm":       "https://imabi.org/class-regular-verbs-i/",
	"https://www.imabi.net/l116numbersviicountersii.htm": "https://imabi.org/counters-vi/",
	"https://www.imabi.net/holidays":                  "https://imabi.org/holidays%e3%80%80%e6%97%a5%e6%9c%ac%e3%81%ae%e7%a5%9d%e6%97%a5/",
	"https://www.imabi.net/hatsuon.htm":               "https://imabi.org/hatsuon/",
	"https://www.imabi.net/funeral.htm":               "https://imabi.org/japanese-ceremony-customs-%e5%86%a0%e5%a9%9a%e8%91%ac%e7%a5%ad/",
	"https://www.imabi.net/dailyexpressionsii.htm":    "https://imabi.org/the-particle-ka-%e3%81%8b-i-basic-questions/",
	"https://www.imabi.net/classicaladjectivesii.htm": "https://imabi.org/classical-adjectives-ii/",
	"https://www.imabi.net/barecoveredforms.htm":      "https://imabi.org/bare-covered-forms/",
	"https://www.imabi.net/adjectivesii.htm":          "https://imabi.org/adjectival-nouns-i%e3%80%80%e5%bd%a2%e5%ae%b9%e5%8b%95%e8%a9%9e%e2%91%a0/",
	"https://imabi.org/wp-admin/post.php?post=221&amp;action=edit#cc836554-5736-4e48-aef9-2765fc98fcd9-link": "",
}

// rewriteLinks repairs stale cross-references first and then makes site-internal links
// relative to the book text directory. Order matters, repaired links get relativized too.
func rewriteLinks(content *html.Node, baseURL string) {

	prefix := strings.TrimRight(baseURL, "/") + "/"

	for _, a := range collectNodes(content, func(n *html.Node) bool { return isElement(n, "a") }) {
		href := getNodeAttr(a, "href")
		if len(href) == 0 {
			continue
		}
		// the replacement table keeps hrefs as they appear in page source, entity
		// escaped, while parsed attribute values come decoded - try both forms
		repl, exists := urlReplacements[href]
		if !exists {
			repl, exists = urlReplacements[html.EscapeString(href)]
		}
		if exists {
			setNodeAttr(a, "href", repl)
			href = repl
		}
		if strings.HasPrefix(href, prefix) {
			setNodeAttr(a, "href", "../"+strings.TrimPrefix(href, prefix))
		}
	}
}
