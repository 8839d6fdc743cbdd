// Package normalize maps raw catalog records into fully-defaulted Movie
// values. It is the only place that touches untyped upstream data; every
// safe-getter lives here so downstream consumers never null-check a field.
package normalize

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/recon-hq/recon/internal/model"
)

const (
	// ImageBaseURL prefixes relative poster/backdrop paths from the
	// catalog API.
	ImageBaseURL = "https://image.tmdb.org/t/p/w500"

	// PlaceholderTitle is used when a record carries no usable title.
	PlaceholderTitle = "Untitled"
)

// Movie converts a raw catalog record into a normalized Movie. It is total:
// absent, null, or mistyped fields degrade to documented defaults and the
// function never fails.
func Movie(raw model.RawRecord) model.Movie {
	return model.Movie{
		ID:           intField(raw, "id"),
		Title:        stringField(raw, "title", PlaceholderTitle),
		Overview:     stringField(raw, "overview", ""),
		Genres:       genreSet(raw["genres"]),
		Popularity:   clampMin(floatField(raw, "popularity"), 0),
		ReleaseDate:  stringField(raw, "release_date", ""),
		PosterPath:   imageURL(stringField(raw, "poster_path", "")),
		BackdropPath: imageURL(stringField(raw, "backdrop_path", "")),
		VoteAverage:  clamp(floatField(raw, "vote_average"), 0, 10),
	}
}

// HasID reports whether a raw record carries a usable positive movie id.
func HasID(raw model.RawRecord) bool {
	return intField(raw, "id") > 0
}

// HasTitle reports whether a raw record carries a non-blank title.
func HasTitle(raw model.RawRecord) bool {
	return strings.TrimSpace(stringField(raw, "title", "")) != ""
}

// ID returns the record's movie id, or 0 when absent or mistyped.
func ID(raw model.RawRecord) int {
	return intField(raw, "id")
}

// Results extracts the candidate list from a `{"results": [...]}` payload.
// A missing or non-list field yields an empty slice; non-object entries
// are dropped.
func Results(raw model.RawRecord) []model.RawRecord {
	list, ok := raw["results"].([]any)
	if !ok {
		return nil
	}
	out := make([]model.RawRecord, 0, len(list))
	for _, entry := range list {
		if rec, ok := entry.(map[string]any); ok {
			out = append(out, model.RawRecord(rec))
		}
	}
	return out
}

// genreSet extracts a deduplicated, sorted set of lowercase genre names.
// It accepts both catalog shapes: a list of `{id, name}` objects (detail
// lookups) and a plain list of strings. Anything else yields an empty set.
func genreSet(value any) []string {
	list, ok := value.([]any)
	if !ok {
		return []string{}
	}

	seen := make(map[string]struct{}, len(list))
	for _, entry := range list {
		var name string
		switch g := entry.(type) {
		case string:
			name = g
		case map[string]any:
			name, _ = g["name"].(string)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			seen[name] = struct{}{}
		}
	}

	genres := make([]string, 0, len(seen))
	for name := range seen {
		genres = append(genres, name)
	}
	sort.Strings(genres)
	return genres
}

func stringField(raw model.RawRecord, key, fallback string) string {
	if s, ok := raw[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// intField tolerates the number representations JSON decoding produces,
// plus numeric strings.
func intField(raw model.RawRecord, key string) int {
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

// floatField tolerates string-or-number values, defaulting to 0. NaN and
// infinities (which ParseFloat accepts) default to 0 as well: they would
// poison score arithmetic and are unencodable as JSON.
func floatField(raw model.RawRecord, key string) float64 {
	var f float64
	switch v := raw[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func imageURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return ImageBaseURL + path
}

func clampMin(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
