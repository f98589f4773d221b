package domain

import (
	"fmt"
	"strings"
)

// NormalizeCityName is the single, shared normalization rule used by both
// the recovery service (C2) and the graph builder (C6) to decide whether
// two differently-spelled city names refer to the same place. Divergence
// between these two call sites would silently fragment the graph, so this
// function must never be duplicated — only imported.
//
// The rule: lowercase, trim, collapse internal whitespace runs to a single
// space, and fold the Cyrillic ё to е (a common transliteration variance
// in Russian place names, e.g. "Вёшенская" / "Вешенская").
func NormalizeCityName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "ё", "е")
	name = strings.Join(strings.Fields(name), " ")
	return name
}

// ExtractCityName derives a canonical city name for a Stop: its City
// field when populated (already a clean value), otherwise the spec's
// canonical extraction rules applied to Name, in order:
//  1. a "г.<name>" marker,
//  2. the last comma-separated segment,
//  3. stripping a known facility prefix (Аэропорт/Вокзал/Автостанция/
//     Остановка) and taking the final whitespace-delimited token,
//  4. the whole name, unparsed.
//
// This logic must stay identical between the recovery service and the
// graph builder — equivalence of extraction on both sides is a hard
// invariant; never duplicate it, only import this function.
func ExtractCityName(s Stop) string {
	raw := s.City
	if raw == "" {
		raw = s.Name
	}
	return NormalizeCityName(extractCityToken(raw))
}

func extractCityToken(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if idx := strings.Index(trimmed, "г."); idx >= 0 {
		rest := strings.TrimSpace(trimmed[idx+len("г."):])
		if comma := strings.Index(rest, ","); comma >= 0 {
			rest = strings.TrimSpace(rest[:comma])
		}
		if rest != "" {
			return rest
		}
	}

	if strings.Contains(trimmed, ",") {
		parts := strings.Split(trimmed, ",")
		return strings.TrimSpace(parts[len(parts)-1])
	}

	prefixes := []string{"Аэропорт", "Вокзал", "Автостанция", "Остановка"}
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			rest := strings.TrimSpace(strings.TrimPrefix(trimmed, p))
			fields := strings.Fields(rest)
			if len(fields) > 0 {
				return fields[len(fields)-1]
			}
		}
	}

	return trimmed
}

// VirtualStopID deterministically derives a stop ID for a synthesized
// virtual stop rooted at a city, so repeated recovery runs over the same
// input produce byte-identical IDs.
func VirtualStopID(city string) string {
	return fmt.Sprintf("virtual-stop-%s", slug(NormalizeCityName(city)))
}

// VirtualRouteID deterministically derives a route ID for a synthesized
// virtual route between two cities.
func VirtualRouteID(fromCity, toCity string) string {
	return fmt.Sprintf("virtual-route-%s-%s", slug(NormalizeCityName(fromCity)), slug(NormalizeCityName(toCity)))
}

// slug replaces spaces with hyphens so generated IDs stay URL/key safe.
func slug(s string) string {
	return strings.ReplaceAll(s, " ", "-")
}
