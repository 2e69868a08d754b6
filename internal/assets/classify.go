package assets

import (
	"net/url"
	"strings"

	"scenepack/internal/config"
)

// Location tags where an asset lives relative to the content host.
type Location string

const (
	// LocationData marks data: URIs, which are location-less and excluded
	// from download and dependency concerns entirely.
	LocationData     Location = "data"
	LocationCore     Location = "core"
	LocationSystem   Location = "system"
	LocationWorld    Location = "world"
	LocationExternal Location = "external"
	LocationModule   Location = "module"
	LocationCustom   Location = "custom"
)

// corePrefixes are the runtime's own asset trees. These ship with every host
// install, so bundling them is wasteful unless explicitly requested.
var corePrefixes = []string{"icons/", "ui/", "sounds/", "fonts/", "css/", "cards/"}

// Rules parameterizes classification and storage-path derivation.
type Rules struct {
	BaseURL        string
	AllowedModules map[string]bool
	StripPrefixes  []string
	TrustWeb       bool
}

// RulesFromConfig derives classification rules from application config.
func RulesFromConfig(cfg *config.Config) Rules {
	allowed := make(map[string]bool, len(cfg.Packs.AllowedModules))
	for _, name := range cfg.Packs.AllowedModules {
		allowed[name] = true
	}
	return Rules{
		BaseURL:        cfg.Origin.BaseURL,
		AllowedModules: allowed,
		StripPrefixes:  append([]string(nil), cfg.Packs.StripPrefixes...),
		TrustWeb:       cfg.Download.TrustWeb,
	}
}

// Classification is the verdict for one asset URL. HasDependency reports
// whether the referencing document depends on the asset travelling with it.
type Classification struct {
	Location      Location
	HasDependency bool
}

// Classify determines an asset's location from its URL path prefix. The
// precedence order is fixed: data URI, core, system, world, external http(s),
// module, then custom. Verdicts: core and system assets are assumed present
// at the destination; world, custom, and non-allow-listed module assets must
// travel; external URLs travel unless the user opted to trust web URLs.
func Classify(rawURL string, rules Rules) Classification {
	trimmed := strings.TrimSpace(rawURL)
	if strings.HasPrefix(trimmed, "data:") {
		return Classification{Location: LocationData}
	}

	path := originStripped(trimmed, rules.BaseURL)

	switch {
	case hasAnyPrefix(path, corePrefixes):
		return Classification{Location: LocationCore}
	case strings.HasPrefix(path, "systems/"):
		return Classification{Location: LocationSystem}
	case strings.HasPrefix(path, "worlds/"):
		return Classification{Location: LocationWorld, HasDependency: true}
	case isWebURL(path):
		return Classification{Location: LocationExternal, HasDependency: !rules.TrustWeb}
	case strings.HasPrefix(path, "modules/"):
		module := moduleName(path)
		return Classification{Location: LocationModule, HasDependency: !rules.AllowedModules[module]}
	default:
		return Classification{Location: LocationCustom, HasDependency: true}
	}
}

// StoragePath derives the canonical, origin-stripped path an asset
// deduplicates and travels under. It is a pure function of the URL and rules:
// protocol and host are stripped (the configured origin first, then any other
// host), query strings are dropped, and external-library prefixes are
// removed. data: URIs have no storage path.
func StoragePath(rawURL string, rules Rules) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" || strings.HasPrefix(trimmed, "data:") {
		return ""
	}

	path := originStripped(trimmed, rules.BaseURL)
	if isWebURL(path) {
		if parsed, err := url.Parse(path); err == nil {
			path = strings.TrimPrefix(parsed.Path, "/")
		}
	}
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = strings.TrimPrefix(path, "/")

	for _, prefix := range rules.StripPrefixes {
		if strings.HasPrefix(path, prefix) {
			path = strings.TrimPrefix(path, prefix)
			break
		}
	}
	return path
}

// AbsoluteURL renders the URL a fetcher can download the asset from.
// Relative paths are joined onto the configured origin.
func AbsoluteURL(rawURL string, rules Rules) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" || isWebURL(trimmed) || strings.HasPrefix(trimmed, "data:") {
		return trimmed
	}
	if rules.BaseURL == "" {
		return trimmed
	}
	return rules.BaseURL + "/" + strings.TrimPrefix(trimmed, "/")
}

func originStripped(rawURL, baseURL string) string {
	if baseURL == "" || !isWebURL(rawURL) {
		return rawURL
	}
	if strings.HasPrefix(rawURL, baseURL+"/") {
		return strings.TrimPrefix(rawURL, baseURL+"/")
	}
	if rawURL == baseURL {
		return ""
	}
	return rawURL
}

func isWebURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

func moduleName(path string) string {
	rest := strings.TrimPrefix(path, "modules/")
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
