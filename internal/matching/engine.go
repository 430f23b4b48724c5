package matching

// Outcome is the result of matching one request. Policy and Mode are carried
// along because both change which users are found and how they are scored.
type Outcome struct {
	Policy  ExtractionPolicy
	Mode    ScoringMode
	Tokens  TokenSet
	Results []MatchResult
}

// Engine runs extraction followed by ranking.
type Engine struct {
	extractor *Extractor
	ranker    *Ranker
}

func NewEngine(extractor *Extractor, ranker *Ranker) *Engine {
	return &Engine{extractor: extractor, ranker: ranker}
}

// Match extracts tokens from text and ranks dir against them.
func (e *Engine) Match(text string, dir Directory) (*Outcome, error) {
	tokens := e.extractor.Extract(text)

	results, err := e.ranker.Rank(tokens, dir)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Policy:  e.extractor.Policy(),
		Mode:    e.ranker.Mode(),
		Tokens:  tokens,
		Results: results,
	}, nil
}

// Release frees the resources held by the ranker.
func (e *Engine) Release() {
	e.ranker.Release()
}
