package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/ca-srg/cyberrag/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	defaultMinSentenceLength = 40
	defaultTopK              = 5
	maxTopK                  = 50
)

//go:embed sources.yaml
var defaultSourcesYAML []byte

// Sources is the static catalogue the retrieval pipeline reads at request time.
// It is validated once by LoadSources and must not be mutated afterwards.
type Sources struct {
	Regions           []types.Region `yaml:"regions"`
	StopWords         []string       `yaml:"stop_words"`
	UIChrome          []string       `yaml:"ui_chrome"`
	MinSentenceLength int            `yaml:"min_sentence_length"`
	TopK              int            `yaml:"top_k"`
}

// LoadSources reads the catalogue from path, or the embedded default when path is empty.
func LoadSources(path string) (*Sources, error) {
	data := defaultSourcesYAML
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
		}
		data = raw
	}
	return ParseSources(data)
}

// ParseSources decodes and validates a YAML catalogue.
func ParseSources(data []byte) (*Sources, error) {
	var src Sources
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}
	if err := validateSources(&src); err != nil {
		return nil, fmt.Errorf("sources validation failed: %w", err)
	}
	return &src, nil
}

func validateSources(src *Sources) error {
	if len(src.Regions) == 0 {
		return types.ErrNoSources
	}

	seen := make(map[string]struct{}, len(src.Regions))
	for i := range src.Regions {
		region := &src.Regions[i]
		region.Name = strings.ToLower(strings.TrimSpace(region.Name))
		if region.Name == "" {
			return fmt.Errorf("region #%d has no name", i+1)
		}
		if _, dup := seen[region.Name]; dup {
			return fmt.Errorf("region %q is defined more than once", region.Name)
		}
		seen[region.Name] = struct{}{}

		hints := make([]string, 0, len(region.Hints))
		for _, h := range region.Hints {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				hints = append(hints, h)
			}
		}
		if len(hints) == 0 {
			return fmt.Errorf("region %q has no hints", region.Name)
		}
		region.Hints = hints

		if len(region.URLs) == 0 {
			return fmt.Errorf("region %q has no urls: %w", region.Name, types.ErrNoSources)
		}
		for j, raw := range region.URLs {
			u, err := url.Parse(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("region %q url %q: %w", region.Name, raw, types.ErrInvalidSourceURL)
			}
			if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("region %q url %q must be absolute http(s): %w", region.Name, raw, types.ErrInvalidSourceURL)
			}
			region.URLs[j] = u.String()
		}
	}

	stop := make([]string, 0, len(src.StopWords))
	for _, w := range src.StopWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			stop = append(stop, w)
		}
	}
	src.StopWords = stop

	chrome := src.UIChrome[:0]
	for _, c := range src.UIChrome {
		if c != "" {
			chrome = append(chrome, c)
		}
	}
	src.UIChrome = chrome

	if src.MinSentenceLength <= 0 {
		src.MinSentenceLength = defaultMinSentenceLength
	}
	if src.TopK <= 0 {
		src.TopK = defaultTopK
	}
	if src.TopK > maxTopK {
		src.TopK = maxTopK
	}

	return nil
}

// RegionNames returns region names in catalogue order.
func (s *Sources) RegionNames() []string {
	names := make([]string, len(s.Regions))
	for i, r := range s.Regions {
		names[i] = r.Name
	}
	return names
}

// Region looks up a region by name.
func (s *Sources) Region(name string) (types.Region, bool) {
	for _, r := range s.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return types.Region{}, false
}
