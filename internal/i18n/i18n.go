// Package i18n provides localized console messages for the cardkey CLI.
// Translations are embedded YAML files loaded with go-i18n; English is the
// fallback for unknown languages and missing messages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	current   language.Tag
)

// Init loads the embedded locales and selects the closest match for lang.
func Init(lang string) {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile(path.Join("locales", f.Name()))
		if err != nil {
			continue
		}
		bundle.MustParseMessageFileBytes(data, f.Name())
	}

	tags := bundle.LanguageTags()
	desired, err := language.Parse(lang)
	if err != nil {
		desired = language.English
	}
	_, idx, _ := language.NewMatcher(tags).Match(desired)
	current = tags[idx]

	localizer = i18n.NewLocalizer(bundle, current.String())
}

// Lang returns the active language tag, e.g. "en" or "zh-CN".
func Lang() string {
	if localizer == nil {
		Init("en")
	}
	return current.String()
}

// Available lists the languages with an embedded translation file.
func Available() []string {
	if bundle == nil {
		Init("en")
	}
	tags := bundle.LanguageTags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}

// T translates messageID and formats it with args using fmt verbs. Unknown
// IDs are returned unchanged.
func T(messageID string, args ...interface{}) string {
	if localizer == nil {
		Init("en")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
