// Package catalog loads the embedded YAML message catalogs and matches
// requested locales against them.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BaseLocale must exist in every bundle and answers unmatched requests.
const BaseLocale = "en-US"

// catalogGlob lays files out as locales/<locale>/<namespace>.yaml.
const catalogGlob = "locales/*/*.yaml"

//go:embed locales/*/*.yaml
var embedded embed.FS

var defaultBundle = func() *Bundle {
	b, err := Load(embedded)
	if err != nil {
		panic(err)
	}
	return b
}()

// document is one catalog file.
type document struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle maps locale -> namespace -> key -> message.
type Bundle struct {
	messages map[string]map[string]map[string]string
	// tags[0] is BaseLocale so unmatched requests resolve to it.
	tags    []string
	matcher language.Matcher
}

// Default returns the bundle built from the embedded catalogs.
func Default() *Bundle {
	return defaultBundle
}

// Load reads every catalog file in fsys.
func Load(fsys fs.FS) (*Bundle, error) {
	files, err := fs.Glob(fsys, catalogGlob)
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no catalogs match %s", catalogGlob)
	}
	slices.Sort(files)

	b := &Bundle{messages: map[string]map[string]map[string]string{}}
	for _, file := range files {
		if err := b.load(fsys, file); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", file, err)
		}
	}
	if _, ok := b.messages[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s has no catalogs", BaseLocale)
	}

	b.tags = append([]string{BaseLocale}, slices.DeleteFunc(b.Locales(), func(l string) bool { return l == BaseLocale })...)
	supported := make([]language.Tag, len(b.tags))
	for i, locale := range b.tags {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", locale, err)
		}
		supported[i] = tag
	}
	b.matcher = language.NewMatcher(supported)
	return b, nil
}

func (b *Bundle) load(fsys fs.FS, file string) error {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return err
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	dirLocale := path.Base(path.Dir(file))
	fileNamespace := strings.TrimSuffix(path.Base(file), path.Ext(file))
	locale := strings.TrimSpace(doc.Locale)
	namespace := strings.TrimSpace(doc.Namespace)
	switch {
	case locale != dirLocale:
		return fmt.Errorf("locale %q does not match directory %q", locale, dirLocale)
	case namespace != fileNamespace:
		return fmt.Errorf("namespace %q does not match file name %q", namespace, fileNamespace)
	case doc.Messages == nil:
		return fmt.Errorf("no messages")
	}

	namespaces, ok := b.messages[locale]
	if !ok {
		namespaces = map[string]map[string]string{}
		b.messages[locale] = namespaces
	}
	if _, dup := namespaces[namespace]; dup {
		return fmt.Errorf("namespace %q defined twice for %s", namespace, locale)
	}
	messages := make(map[string]string, len(doc.Messages))
	for key, text := range doc.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("blank message key")
		}
		messages[key] = text
	}
	namespaces[namespace] = messages
	return nil
}

// Locales returns the sorted locales present in the bundle.
func (b *Bundle) Locales() []string {
	return slices.Sorted(maps.Keys(b.messages))
}

// Resolve maps a requested locale such as "de", "de-AT" or "de_CH" to the
// closest bundle locale.
func (b *Bundle) Resolve(requested string) string {
	requested = strings.ReplaceAll(strings.TrimSpace(requested), "_", "-")
	if requested == "" {
		return BaseLocale
	}
	if _, ok := b.messages[requested]; ok {
		return requested
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return BaseLocale
	}
	_, index, confidence := b.matcher.Match(tag)
	if confidence == language.No || index < 0 || index >= len(b.tags) {
		return BaseLocale
	}
	return b.tags[index]
}

// Messages resolves locale and returns a copy of its namespace messages with
// the locale that served them. A namespace missing from the resolved locale
// is served from BaseLocale.
func (b *Bundle) Messages(locale, namespace string) (string, map[string]string) {
	resolved := b.Resolve(locale)
	namespace = strings.TrimSpace(namespace)
	if messages, ok := b.messages[resolved][namespace]; ok && len(messages) > 0 {
		return resolved, maps.Clone(messages)
	}
	messages := maps.Clone(b.messages[BaseLocale][namespace])
	if messages == nil {
		messages = map[string]string{}
	}
	return BaseLocale, messages
}
