// Package knowledge provides the read-only evidence knowledge base consulted by the pipeline.
package knowledge

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/factchecker/veracity/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSource is returned when a knowledge base definition is malformed.
var ErrInvalidSource = errors.New("invalid knowledge base")

// Source is a single evidence record filed under a topic.
type Source struct {
	Title       string  `yaml:"title" json:"title"`
	Credibility float64 `yaml:"credibility" json:"credibility"`
	Supports    bool    `yaml:"supports" json:"supports"`
	Excerpt     string  `yaml:"excerpt" json:"excerpt"`
}

// Topic is a keyword with its evidence sources.
type Topic struct {
	Name    string   `yaml:"topic" json:"topic"`
	Sources []Source `yaml:"sources" json:"sources"`
}

// Base is an immutable, ordered collection of topics. It is safe for concurrent use.
type Base struct {
	topics []Topic
	index  map[string]int
}

// New builds a knowledge base from topics. Topic order is preserved and defines match priority.
// The input is copied, so later changes by the caller do not affect the base.
func New(topics []Topic) (*Base, error) {
	b := &Base{
		topics: make([]Topic, 0, len(topics)),
		index:  make(map[string]int, len(topics)),
	}

	for _, t := range topics {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: topic name is empty", ErrInvalidSource)
		}
		if _, dup := b.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate topic %q", ErrInvalidSource, name)
		}
		for i, s := range t.Sources {
			if s.Credibility < 0 || s.Credibility > 1 {
				return nil, fmt.Errorf("%w: topic %q source %d credibility %.2f outside [0,1]",
					ErrInvalidSource, name, i, s.Credibility)
			}
		}

		sources := make([]Source, len(t.Sources))
		copy(sources, t.Sources)
		b.index[name] = len(b.topics)
		b.topics = append(b.topics, Topic{Name: name, Sources: sources})
	}

	return b, nil
}

// Len returns the number of topics.
func (b *Base) Len() int {
	return len(b.topics)
}

// Topics returns topic names in match order.
func (b *Base) Topics() []string {
	names := make([]string, len(b.topics))
	for i, t := range b.topics {
		names[i] = t.Name
	}
	return names
}

// Sources returns a copy of the sources filed under topic.
func (b *Base) Sources(topic string) ([]Source, bool) {
	i, ok := b.index[strings.ToLower(topic)]
	if !ok {
		return nil, false
	}
	out := make([]Source, len(b.topics[i].Sources))
	copy(out, b.topics[i].Sources)
	return out, true
}

// All returns a deep copy of every topic in match order.
func (b *Base) All() []Topic {
	out := make([]Topic, len(b.topics))
	for i, t := range b.topics {
		sources := make([]Source, len(t.Sources))
		copy(sources, t.Sources)
		out[i] = Topic{Name: t.Name, Sources: sources}
	}
	return out
}

// Summaries returns the source count and mean credibility of every topic in match order.
func (b *Base) Summaries() []models.TopicSummary {
	out := make([]models.TopicSummary, 0, len(b.topics))
	for _, t := range b.topics {
		ts := models.TopicSummary{Topic: t.Name, SourceCount: len(t.Sources)}
		for _, s := range t.Sources {
			ts.AverageCredibility += s.Credibility
		}
		if len(t.Sources) > 0 {
			ts.AverageCredibility /= float64(len(t.Sources))
		}
		out = append(out, ts)
	}
	return out
}

type fileFormat struct {
	Topics []Topic `yaml:"topics"`
}

// Parse decodes a YAML knowledge base document.
func Parse(data []byte) (*Base, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	return New(doc.Topics)
}

// LoadFile reads a YAML knowledge base from path.
func LoadFile(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	return Parse(data)
}

// Marshal encodes topics in the format accepted by Parse.
func Marshal(topics []Topic) ([]byte, error) {
	return yaml.Marshal(fileFormat{Topics: topics})
}
