package processor

import (
	"github.com/beevik/etree"
)

type xmlAttr struct {
	key, value string
}

func attr(key, value string) xmlAttr {
	return xmlAttr{key, value}
}

// addChild creates a child element with attributes, returning it for further nesting.
func addChild(parent *etree.Element, tag string, attrs ...xmlAttr) *etree.Element {
	e := parent.CreateElement(tag)
	for _, a := range attrs {
		e.CreateAttr(a.key, a.value)
	}
	return e
}

// addChildText creates a child element holding character data.
func addChildText(parent *etree.Element, tag, text string, attrs ...xmlAttr) *etree.Element {
	e := addChild(parent, tag, attrs...)
	e.SetText(text)
	return e
}

//lint:ignore U1000 keep getXMLFragment()
func getXMLFragment(d *etree.Document) string {
	d.IndentTabs()
	s, err := d.WriteToString()
	if err != nil {
		return err.Error()
	}
	return s
}
