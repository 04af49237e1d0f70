package usda

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed data/dictionary.yaml
var dictionaryYAML []byte

const maxPhraseWords = 4

// Translator rewrites Portuguese food queries into English before they are
// sent to FoodData Central. Unknown words pass through unchanged.
type Translator struct {
	phrases map[string]string
	words   map[string]string
}

type dictionaryFile struct {
	Phrases map[string]string `yaml:"phrases"`
	Words   map[string]string `yaml:"words"`
}

// NewTranslator loads the embedded dictionary.
func NewTranslator() (*Translator, error) {
	return ParseDictionary(dictionaryYAML)
}

func ParseDictionary(data []byte) (*Translator, error) {
	var f dictionaryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary: %w", err)
	}
	t := &Translator{
		phrases: make(map[string]string, len(f.Phrases)),
		words:   make(map[string]string, len(f.Words)),
	}
	for k, v := range f.Phrases {
		t.phrases[Fold(k)] = v
	}
	for k, v := range f.Words {
		t.words[Fold(k)] = v
	}
	return t, nil
}

// Translate returns the English query and whether any term was translated.
// Multi-word phrases win over single words, longest first.
func (t *Translator) Translate(query string) (string, bool) {
	tokens := strings.Fields(Fold(query))
	if len(tokens) == 0 {
		return "", false
	}

	out := make([]string, 0, len(tokens))
	changed := false
	for i := 0; i < len(tokens); {
		matched := false
		for n := min(maxPhraseWords, len(tokens)-i); n >= 2; n-- {
			if en, ok := t.phrases[strings.Join(tokens[i:i+n], " ")]; ok {
				out = append(out, en)
				i += n
				matched, changed = true, true
				break
			}
		}
		if matched {
			continue
		}
		if en, ok := t.words[tokens[i]]; ok {
			out = append(out, en)
			changed = true
		} else if en, ok := t.phrases[tokens[i]]; ok {
			out = append(out, en)
			changed = true
		} else {
			out = append(out, tokens[i])
		}
		i++
	}
	return strings.Join(out, " "), changed
}

// Fold lowercases s, strips diacritics and collapses whitespace, so
// "Feijão  Preto" and "feijao preto" compare equal.
func Fold(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
