package matching

import (
	"fmt"
	"strings"
)

// DefaultVocabulary is the keyword list used by the fixed vocabulary policy
// when none is configured.
var DefaultVocabulary = []string{
	"python", "java", "ai", "ml", "flask", "react",
	"cloud", "devops", "html", "css", "javascript",
}

// PolicyKind tells which extraction strategy produced a token set.
type PolicyKind int

const (
	PolicyFixed PolicyKind = iota + 1
	PolicyOpen
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyFixed:
		return "fixed"
	case PolicyOpen:
		return "open"
	default:
		return fmt.Sprintf("PolicyKind(%d)", int(k))
	}
}

// ParsePolicyKind accepts "fixed" and "open".
func ParsePolicyKind(s string) (PolicyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "fixed-vocabulary":
		return PolicyFixed, nil
	case "open", "open-vocabulary":
		return PolicyOpen, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// ExtractionPolicy selects how request text is turned into tokens.
// The zero value is invalid; use FixedVocabulary or OpenVocabulary.
type ExtractionPolicy struct {
	kind       PolicyKind
	vocabulary []string
}

// FixedVocabulary accepts a keyword whenever it occurs as a substring of the
// lower-cased text. When no keyword is left after trimming, DefaultVocabulary
// is used.
func FixedVocabulary(keywords ...string) ExtractionPolicy {
	vocabulary := normalizeKeywords(keywords)
	if len(vocabulary) == 0 {
		vocabulary = normalizeKeywords(DefaultVocabulary)
	}

	return ExtractionPolicy{kind: PolicyFixed, vocabulary: vocabulary}
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	vocabulary := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		vocabulary = append(vocabulary, k)
	}
	return vocabulary
}

// OpenVocabulary accepts every maximal run of ASCII letters.
func OpenVocabulary() ExtractionPolicy {
	return ExtractionPolicy{kind: PolicyOpen}
}

// NewPolicy builds a policy from its configured name.
func NewPolicy(name string, vocabulary []string) (ExtractionPolicy, error) {
	kind, err := ParsePolicyKind(name)
	if err != nil {
		return ExtractionPolicy{}, err
	}
	if kind == PolicyOpen {
		return OpenVocabulary(), nil
	}
	return FixedVocabulary(vocabulary...), nil
}

func (p ExtractionPolicy) Kind() PolicyKind { return p.kind }

// Vocabulary returns a copy of the keyword list; nil for open policies.
func (p ExtractionPolicy) Vocabulary() []string {
	if p.vocabulary == nil {
		return nil
	}
	return append([]string(nil), p.vocabulary...)
}

func (p ExtractionPolicy) String() string { return p.kind.String() }

// Extract turns text into a token set according to policy. An invalid policy
// yields an empty set.
func Extract(text string, policy ExtractionPolicy) TokenSet {
	switch policy.kind {
	case PolicyFixed:
		return extractFixed(text, policy.vocabulary)
	case PolicyOpen:
		return extractOpen(text)
	default:
		return TokenSet{}
	}
}

func extractFixed(text string, vocabulary []string) TokenSet {
	tokens := TokenSet{}
	if text == "" {
		return tokens
	}

	lower := strings.ToLower(text)
	for _, keyword := range vocabulary {
		if strings.Contains(lower, keyword) {
			tokens[keyword] = struct{}{}
		}
	}
	return tokens
}

func extractOpen(text string) TokenSet {
	tokens := TokenSet{}

	inWord := false
	buf := make([]byte, 0, 32)
	for i := 0; i <= len(text); i++ {
		var c byte
		letter := false
		if i < len(text) {
			c = text[i]
			if c >= 'A' && c <= 'Z' {
				c += 'a' - 'A'
			}
			letter = c >= 'a' && c <= 'z'
		}

		if letter {
			if !inWord {
				inWord = true
				buf = buf[:0]
			}
			buf = append(buf, c)
			continue
		}

		if inWord {
			tokens[string(buf)] = struct{}{}
			inWord = false
		}
	}

	return tokens
}

// Extractor is an Extract bound to one policy.
type Extractor struct {
	policy ExtractionPolicy
}

func NewExtractor(policy ExtractionPolicy) (*Extractor, error) {
	if policy.kind != PolicyFixed && policy.kind != PolicyOpen {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, policy.kind)
	}
	return &Extractor{policy: policy}, nil
}

func (e *Extractor) Extract(text string) TokenSet {
	return Extract(text, e.policy)
}

func (e *Extractor) Policy() ExtractionPolicy { return e.policy }
