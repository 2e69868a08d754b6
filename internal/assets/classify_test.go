package assets

import "testing"

func testRules() Rules {
	return Rules{
		BaseURL:        "https://vtt.example.com",
		AllowedModules: map[string]bool{"shared-art": true},
		StripPrefixes:  []string{"moulinette/images/"},
	}
}

func TestClassifyPrecedence(t *testing.T) {
	rules := testRules()
	cases := []struct {
		url      string
		location Location
		dep      bool
	}{
		{"data:image/png;base64,AAAA", LocationData, false},
		{"icons/svg/mystery-man.svg", LocationCore, false},
		{"systems/dnd5e/tokens/beast.webp", LocationSystem, false},
		{"worlds/demo/maps/crossroads.webp", LocationWorld, true},
		{"https://assets.example.net/map.webp", LocationExternal, true},
		{"modules/shared-art/goblin.webp", LocationModule, false},
		{"modules/unknown-mod/goblin.webp", LocationModule, true},
		{"uploads/campaign/portrait.webp", LocationCustom, true},
		// Origin-prefixed URLs classify as their stripped path, not external.
		{"https://vtt.example.com/worlds/demo/maps/crossroads.webp", LocationWorld, true},
		{"https://vtt.example.com/icons/svg/mystery-man.svg", LocationCore, false},
	}
	for _, tc := range cases {
		got := Classify(tc.url, rules)
		if got.Location != tc.location || got.HasDependency != tc.dep {
			t.Fatalf("Classify(%q) = %+v, want %v/%v", tc.url, got, tc.location, tc.dep)
		}
	}
}

func TestClassifyTrustWeb(t *testing.T) {
	rules := testRules()
	rules.TrustWeb = true
	got := Classify("https://assets.example.net/map.webp", rules)
	if got.Location != LocationExternal || got.HasDependency {
		t.Fatalf("trusted web URL should carry no dependency: %+v", got)
	}
}

func TestStoragePathStripsOrigin(t *testing.T) {
	rules := testRules()
	stripped := StoragePath("https://vtt.example.com/worlds/demo/maps/crossroads.webp", rules)
	relative := StoragePath("worlds/demo/maps/crossroads.webp", rules)
	if stripped != relative {
		t.Fatalf("origin-stripped path %q differs from relative path %q", stripped, relative)
	}
	if stripped != "worlds/demo/maps/crossroads.webp" {
		t.Fatalf("unexpected storage path: %q", stripped)
	}
}

func TestStoragePathPureFunction(t *testing.T) {
	rules := testRules()
	first := StoragePath("worlds/demo/maps/a.webp?v=1", rules)
	second := StoragePath("worlds/demo/maps/a.webp?v=2", rules)
	if first != second || first != "worlds/demo/maps/a.webp" {
		t.Fatalf("query strings should not affect storage path: %q vs %q", first, second)
	}
}

func TestStoragePathStripsLibraryPrefix(t *testing.T) {
	rules := testRules()
	got := StoragePath("moulinette/images/creatures/wolf.webp", rules)
	if got != "creatures/wolf.webp" {
		t.Fatalf("library prefix not stripped: %q", got)
	}
}

func TestStoragePathExternalHostStripped(t *testing.T) {
	rules := testRules()
	got := StoragePath("https://assets.example.net/packs/map.webp", rules)
	if got != "packs/map.webp" {
		t.Fatalf("external host not stripped: %q", got)
	}
}

func TestStoragePathDataURIEmpty(t *testing.T) {
	if got := StoragePath("data:image/png;base64,AAAA", testRules()); got != "" {
		t.Fatalf("data URI should have no storage path, got %q", got)
	}
}

func TestStoragePathUnescapes(t *testing.T) {
	got := StoragePath("worlds/demo/maps/old%20mill.webp", testRules())
	if got != "worlds/demo/maps/old mill.webp" {
		t.Fatalf("percent encoding not unescaped: %q", got)
	}
}

func TestAbsoluteURL(t *testing.T) {
	rules := testRules()
	if got := AbsoluteURL("worlds/demo/a.webp", rules); got != "https://vtt.example.com/worlds/demo/a.webp" {
		t.Fatalf("unexpected absolute url: %q", got)
	}
	if got := AbsoluteURL("https://other.example.net/a.webp", rules); got != "https://other.example.net/a.webp" {
		t.Fatalf("web url should pass through: %q", got)
	}
}
