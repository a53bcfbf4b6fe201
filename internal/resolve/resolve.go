// Package resolve turns configured dictionaries into local aff/dic file
// paths, searching well-known directories and downloading what is missing.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound reports that a dictionary could not be located or downloaded.
var ErrNotFound = errors.New("dictionary not found")

// DefaultDownloadURL fetches hunspell dictionaries from the
// wooorm/dictionaries collection. {name} is the collection's name for the
// language, {lang} the configured language and {ext} either "aff" or "dic".
const DefaultDownloadURL = "https://raw.githubusercontent.com/wooorm/dictionaries/main/dictionaries/{name}/index.{ext}"

// Spec names a dictionary as configured by the user. Either Language or
// both Aff and Dic are set. Aff and Dic may be local paths or http(s) URLs.
type Spec struct {
	Language string `json:"language,omitempty" toml:"language" yaml:"language"`
	Aff      string `json:"aff,omitempty" toml:"aff" yaml:"aff"`
	Dic      string `json:"dic,omitempty" toml:"dic" yaml:"dic"`
}

func (s Spec) String() string {
	if s.Aff != "" || s.Dic != "" {
		return s.Aff + "+" + s.Dic
	}
	return s.Language
}

// Paths locates a readable aff/dic pair.
type Paths struct {
	Language string
	Aff      string
	Dic      string
}

// Options configure a Resolver.
type Options struct {
	SearchPaths []string
	DownloadURL string
	CacheDir    string
	Client      *http.Client
}

// Resolver finds dictionaries. It is safe for concurrent use; concurrent
// downloads of the same URL are merged.
type Resolver struct {
	searchPaths []string
	downloadURL string
	cacheDir    string
	client      *http.Client
	group       singleflight.Group

	cacheMu sync.Mutex
	cache   *Cache
}

// New creates a Resolver. Empty options fall back to the default search
// paths, DefaultDownloadURL and the user cache directory.
func New(opts Options) *Resolver {
	r := &Resolver{
		searchPaths: opts.SearchPaths,
		downloadURL: opts.DownloadURL,
		cacheDir:    opts.CacheDir,
		client:      opts.Client,
	}
	if len(r.searchPaths) == 0 {
		r.searchPaths = DefaultSearchPaths()
	}
	if r.downloadURL == "" {
		r.downloadURL = DefaultDownloadURL
	}
	if r.client == nil {
		r.client = http.DefaultClient
	}
	return r
}

// DefaultSearchPaths lists directories where system dictionaries live.
func DefaultSearchPaths() []string {
	paths := []string{
		".",
		"~/.local/share/hunspell",
		"/usr/local/share/hunspell",
		"/usr/share/hunspell",
		"/usr/share/myspell",
		"/usr/share/myspell/dicts",
		"/Library/Spelling",
		"~/Library/Spelling",
	}
	if dir := os.Getenv("DICPATH"); dir != "" {
		paths = append(filepath.SplitList(dir), paths...)
	}
	return paths
}

// ResolveAll resolves specs in order. The first failure stops resolution.
func (r *Resolver) ResolveAll(ctx context.Context, specs []Spec) ([]Paths, error) {
	out := make([]Paths, 0, len(specs))
	for _, spec := range specs {
		p, err := r.Resolve(ctx, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Resolve locates one dictionary.
func (r *Resolver) Resolve(ctx context.Context, spec Spec) (Paths, error) {
	if spec.Aff != "" || spec.Dic != "" {
		return r.resolveExplicit(ctx, spec)
	}
	lang := spec.Language
	if lang == "" {
		lang = DefaultLanguage()
	}
	if p, ok := r.search(lang); ok {
		return p, nil
	}
	return r.download(ctx, lang)
}

func (r *Resolver) resolveExplicit(ctx context.Context, spec Spec) (Paths, error) {
	if spec.Aff == "" || spec.Dic == "" {
		return Paths{}, fmt.Errorf("dictionary %s: both aff and dic are required", spec)
	}
	aff, err := r.local(ctx, spec.Aff)
	if err != nil {
		return Paths{}, err
	}
	dic, err := r.local(ctx, spec.Dic)
	if err != nil {
		return Paths{}, err
	}
	return Paths{Language: spec.Language, Aff: aff, Dic: dic}, nil
}

// local returns a readable file for location, downloading URLs.
func (r *Resolver) local(ctx context.Context, location string) (string, error) {
	if isURL(location) {
		return r.fetch(ctx, location)
	}
	path, err := homedir.Expand(location)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", location, err)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return path, nil
}

// search looks for <lang>.aff/.dic and <lang>/index.aff/.dic in the search
// paths.
func (r *Resolver) search(lang string) (Paths, bool) {
	layouts := [][2]string{
		{lang + ".aff", lang + ".dic"},
		{filepath.Join(lang, "index.aff"), filepath.Join(lang, "index.dic")},
	}
	for _, dir := range r.searchPaths {
		base, err := homedir.Expand(dir)
		if err != nil {
			continue
		}
		for _, l := range layouts {
			aff := filepath.Join(base, l[0])
			dic := filepath.Join(base, l[1])
			if isFile(aff) && isFile(dic) {
				return Paths{Language: lang, Aff: aff, Dic: dic}, true
			}
		}
	}
	return Paths{}, false
}

func (r *Resolver) download(ctx context.Context, lang string) (Paths, error) {
	affURL := expandURL(r.downloadURL, lang, "aff")
	dicURL := expandURL(r.downloadURL, lang, "dic")
	aff, err := r.fetch(ctx, affURL)
	if err != nil {
		return Paths{}, fmt.Errorf("dictionary %s: %w", lang, err)
	}
	dic, err := r.fetch(ctx, dicURL)
	if err != nil {
		return Paths{}, fmt.Errorf("dictionary %s: %w", lang, err)
	}
	return Paths{Language: lang, Aff: aff, Dic: dic}, nil
}

// CollectionName maps a locale such as en_US to the directory name used by
// the wooorm/dictionaries collection: the bare language when the region is
// the language's home region, language-REGION otherwise.
func CollectionName(lang string) string {
	lang = strings.ReplaceAll(lang, "-", "_")
	primary, region, ok := strings.Cut(lang, "_")
	primary = strings.ToLower(primary)
	if !ok || region == "" {
		return primary
	}
	region = strings.ToUpper(region)
	if region == strings.ToUpper(primary) || (primary == "en" && region == "US") {
		return primary
	}
	return primary + "-" + region
}

func expandURL(template, lang, ext string) string {
	return strings.NewReplacer(
		"{name}", CollectionName(lang),
		"{lang}", lang,
		"{ext}", ext,
	).Replace(template)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
