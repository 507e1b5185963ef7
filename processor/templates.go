package processor

import (
	"bytes"
	"net/url"
	"os"
	"slices"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"github.com/vainilie/imabi/misc"
	"github.com/vainilie/imabi/static"
)

// Values holds variables we make available for template expansion.
type Values struct {
	Context   string
	Title     string
	Subtitle  string
	Authors   []string
	Credits   []string
	SiteURL   string
	SiteHost  string
	Generated time.Time
	Tool      string
}

// splitTitle separates the book title into main title and subtitle parts.
func splitTitle(full string) (string, string) {
	if i := strings.Index(full, " - "); i >= 0 {
		return strings.TrimSpace(full[:i]), strings.TrimSpace(full[i+len(" - "):])
	}
	return full, ""
}

func (p *Processor) templateValues(name string) Values {

	title, subtitle := splitTitle(p.env.Cfg.Doc.Title)

	siteURL := strings.TrimRight(p.env.Cfg.Site.BaseURL, "/")
	host := siteURL
	if u, err := url.Parse(siteURL); err == nil && len(u.Host) > 0 {
		host = u.Host
	}

	var credits []string
	for i, a := range p.env.Cfg.Doc.Authors {
		role := "Editor"
		if i == 0 {
			role = "Creator/Author"
		}
		credits = append(credits, a+" ("+role+")")
	}

	return Values{
		Context:   name,
		Title:     title,
		Subtitle:  subtitle,
		Authors:   slices.Clone(p.env.Cfg.Doc.Authors),
		Credits:   credits,
		SiteURL:   siteURL,
		SiteHost:  host,
		Generated: time.Now().UTC(),
		Tool:      "imabi " + misc.GetVersion(),
	}
}

// expandTemplate renders a named page template. Override path in configuration wins
// over the built-in template.
func (p *Processor) expandTemplate(name, override string) (string, error) {

	var (
		text []byte
		err  error
	)
	if len(override) > 0 {
		text, err = os.ReadFile(p.env.Cfg.AbsolutePath(override))
	} else {
		text, err = static.Asset("resources/templates/" + name + ".tmpl")
	}
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(string(text))
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, p.templateValues(name)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
