package marketplace

import (
	"sort"
	"strings"
)

type Profile struct {
	ID               string
	Name             string
	TitleLimit       int
	BulletLimit      int
	DescriptionLimit int
	BackendByteLimit int
	Language         string
	PluralSuffix     string
}

const DefaultID = "us"

var registry = map[string]Profile{
	"us": {ID: "us", Name: "Amazon.com", TitleLimit: 200, BulletLimit: 255, DescriptionLimit: 2000, BackendByteLimit: 249, Language: "en", PluralSuffix: "s"},
	"uk": {ID: "uk", Name: "Amazon.co.uk", TitleLimit: 200, BulletLimit: 255, DescriptionLimit: 2000, BackendByteLimit: 249, Language: "en", PluralSuffix: "s"},
	"ca": {ID: "ca", Name: "Amazon.ca", TitleLimit: 200, BulletLimit: 255, DescriptionLimit: 2000, BackendByteLimit: 249, Language: "en", PluralSuffix: "s"},
	"de": {ID: "de", Name: "Amazon.de", TitleLimit: 200, BulletLimit: 255, DescriptionLimit: 2000, BackendByteLimit: 249, Language: "de", PluralSuffix: "e"},
	"fr": {ID: "fr", Name: "Amazon.fr", TitleLimit: 200, BulletLimit: 255, DescriptionLimit: 2000, BackendByteLimit: 249, Language: "fr", PluralSuffix: "s"},
	"es": {ID: "es", Name: "Amazon.es", TitleLimit: 200, BulletLimit: 255, DescriptionLimit: 2000, BackendByteLimit: 249, Language: "es", PluralSuffix: "s"},
	"it": {ID: "it", Name: "Amazon.it", TitleLimit: 200, BulletLimit: 255, DescriptionLimit: 2000, BackendByteLimit: 249, Language: "it", PluralSuffix: "i"},
	"jp": {ID: "jp", Name: "Amazon.co.jp", TitleLimit: 100, BulletLimit: 150, DescriptionLimit: 2000, BackendByteLimit: 500, Language: "ja", PluralSuffix: ""},
}

// 未识别站点回落到 us 配置。
func Lookup(id string) Profile {
	id = strings.ToLower(strings.TrimSpace(id))
	if p, ok := registry[id]; ok {
		return p
	}
	return registry[DefaultID]
}

func Known(id string) bool {
	_, ok := registry[strings.ToLower(strings.TrimSpace(id))]
	return ok
}

func IDs() []string {
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
