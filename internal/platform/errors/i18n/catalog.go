// Package i18n renders client-facing error messages from the locale catalogs.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/db-timetables-mcp/internal/platform/i18n/catalog"
)

// Code is a machine-readable error code, kept as a string so this package does
// not import the errors package.
type Code = string

// namespace holds the error templates inside the locale catalogs.
const namespace = "errors"

// Catalog renders the error templates of one locale. Templates are parsed
// once; a template that does not parse is returned verbatim.
type Catalog struct {
	locale    string
	raw       map[Code]string
	templates map[Code]*template.Template
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// NewCatalog builds a catalog from explicit messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		raw:       make(map[Code]string, len(messages)),
		templates: make(map[Code]*template.Template, len(messages)),
	}
	for code, text := range messages {
		c.raw[code] = text
		tmpl, err := template.New(code).Option("missingkey=zero").Parse(text)
		if err != nil {
			continue
		}
		c.templates[code] = tmpl
	}
	return c
}

// RegisterCatalog installs a catalog for locale, replacing any existing one.
func RegisterCatalog(locale string, catalog *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = catalog
}

// GetCatalog returns the catalog for locale. Unknown locales resolve to the
// closest embedded one, or en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}

	catalogsMu.RLock()
	c, ok := catalogs[requested]
	catalogsMu.RUnlock()
	if ok {
		return c
	}

	resolved, messages := i18ncatalog.Default().Messages(requested, namespace)

	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[resolved]; ok {
		return existing
	}
	built := NewCatalog(resolved, messages)
	catalogs[resolved] = built
	return built
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata. Unknown codes render as
// the code itself.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.templates[code]
	if !ok {
		if raw, known := c.raw[code]; known {
			return raw
		}
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, metadata); err != nil {
		return c.raw[code]
	}
	return b.String()
}
