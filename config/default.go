package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/constant"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes the current value next to the default.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.Type(),
	})
}

// Type names the kind of value the field holds.
func (f *Field) Type() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.CatalogBaseURL, "https://phimapi.com", "Base URL of the primary catalog API")
	register(key.CatalogImageBase, "https://phimimg.com", "Image CDN used to resolve relative catalog poster paths")
	register(key.CatalogPageSize, 64, "Items requested per listing or search page")
	register(key.CatalogTimeout, 8, "Seconds to wait for a single upstream call before treating it as failed")
	register(key.CatalogRateLimit, 20, "Maximum upstream requests per second.\n0 disables the limiter")
	register(key.CatalogAnimeCategory, "hoat-hinh", "Catalog category slug used for the anime listing")

	register(key.MetadataEnabled, true, "Enrich records with posters from the metadata provider")
	register(key.MetadataBaseURL, "https://api.themoviedb.org/3", "Base URL of the metadata provider API")
	register(key.MetadataImageBase, "https://image.tmdb.org/t/p", "Base URL for metadata provider images")
	register(key.MetadataToken, "", "Bearer token for the metadata provider.\nFalls back to the system keyring, see \"petflix auth\"")

	register(key.CacheDurable, true, "Persist cache entries across runs")
	register(key.CacheMemoryLimit, 2048, "Maximum number of entries kept in the in-process cache")
	register(key.CacheDurableLimit, 512, "Maximum number of entries kept in the durable cache")
	register(key.CacheTTLShort, 10, "Minutes listing, search and detail responses stay fresh")
	register(key.CacheTTLLong, 24*60, "Minutes metadata provider responses stay fresh")
	register(key.CacheTTLVeryLong, 7*24*60, "Minutes resolved poster URLs stay fresh")

	register(key.EnrichConcurrency, 16, "Concurrent metadata lookups per page")

	register(key.SearchDirectPages, 30, "Pages scanned by the direct keyword strategy")
	register(key.SearchTokenPages, 10, "Pages scanned per keyword token")
	register(key.SearchSynonymPages, 5, "Pages scanned per alternate term")
	register(key.SearchLatestPages, 10, "Latest-update pages filtered locally when nothing else matched")
	register(key.SearchCategoryPages, 20, "Category pages scanned for keyword matches in anime searches")
	register(key.SearchConcurrency, 12, "Concurrent upstream requests per search strategy")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching")
	register(key.SearchWeightTitleExact, 100, "Score for the whole keyword appearing in a title")
	register(key.SearchWeightTitleToken, 50, "Score per keyword token appearing in a title")
	register(key.SearchWeightTitleAlternate, 30, "Score per alternate term appearing in a title")
	register(key.SearchWeightDescriptionExact, 20, "Score for the whole keyword appearing in a description")
	register(key.SearchWeightDescriptionToken, 10, "Score per keyword token appearing in a description")
	register(key.SearchWeightRecent, 5, "Bonus for titles released after 2020")
	register(key.SearchWeightModern, 2, "Bonus for titles released after 2015")

	register(key.PaginateMaxJump, 2, "Largest page distance a single navigation may cover")

	register(key.HistorySave, true, "Record playback progress")
	register(key.HistoryUser, "local", "User the playback progress is recorded for")
	register(key.HistoryQueriesLimit, 5, "Number of recent search keywords to remember")

	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"label":  func(s string) string { return style.Fg(color.Blue)(fmt.Sprintf("%-9s", s)) },
	"key":    style.Fg(color.Purple),
	"render": render,
	"value":  viper.Get,
}).Parse(`{{ key .Key }} {{ faint (printf "(%s)" .Type) }}
{{ faint .Description }}
{{ label "value" }}{{ render (value .Key) }}
{{ label "default" }}{{ render .Value }}
{{ label "env" }}{{ .Env }}`))

// render colors a value by type.
func render(v any) string {
	switch value := v.(type) {
	case bool:
		if value {
			return style.Fg(color.Green)(strconv.FormatBool(value))
		}
		return style.Fg(color.Red)(strconv.FormatBool(value))
	case string:
		if value == "" {
			return style.Faint(`""`)
		}
		return style.Fg(color.Yellow)(value)
	case int:
		return style.Fg(color.Cyan)(strconv.Itoa(value))
	default:
		return fmt.Sprint(value)
	}
}
