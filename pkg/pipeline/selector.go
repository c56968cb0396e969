package pipeline

// Chain is an ordered list of stages applied to the paths its matcher
// accepts. A chain without stages is a pure pass-through.
type Chain struct {
	Name    string
	Matcher Matcher
	Stages  []Stage
}

// Selector maps a request path to a chain. Chains are evaluated in
// registration order and the first match wins; paths no chain accepts get
// the fallback chain. Misordering chains changes which stages run.
type Selector struct {
	chains   []Chain
	fallback Chain
}

// NewSelector creates a selector. fallback is normally the protected
// catch-all chain.
func NewSelector(fallback Chain, chains ...Chain) *Selector {
	cs := make([]Chain, len(chains))
	copy(cs, chains)
	return &Selector{chains: cs, fallback: fallback}
}

// Select returns the chain for path.
func (s *Selector) Select(path string) Chain {
	for _, c := range s.chains {
		if c.Matcher.Match(path) {
			return c
		}
	}
	return s.fallback
}

// Chains returns the registered chains followed by the fallback.
func (s *Selector) Chains() []Chain {
	out := make([]Chain, 0, len(s.chains)+1)
	out = append(out, s.chains...)
	return append(out, s.fallback)
}
