package extract

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

// DefaultRanking lists the layouts scored in automatic mode. The legacy
// invoice sub-layouts and the detailed payroll slip are reachable only by
// forcing their id.
var DefaultRanking = []string{
	string(constants.FormatSIIClasico),
	string(constants.FormatSIIVarB),
	string(constants.FormatNotaCredito),
	string(constants.FormatFacturaSII),
	string(constants.FormatLiquidacion),
	string(constants.FormatLiquidacionTipo2),
}

// All returns one instance of every known extractor in registration order.
func All() []Extractor {
	return []Extractor{
		newSIIClasico(),
		newSIIVarB(),
		newFacturaAfecta(),
		newFacturaModerna(),
		newFacturaSimple(),
		newFacturaRetail(),
		newFacturaSII(),
		newNotaCredito(),
		newLiquidacion(),
		newLiquidacionTipo2(),
		newLiquidacionTipo3(),
	}
}

// Registry selects an extractor for a document. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	dispatch []Extractor
	byID     map[string]Extractor
	ranking  []Extractor
	logger   *slog.Logger
}

type RegistryOption func(*Registry)

func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry builds a registry whose dispatch set is every extractor given
// and whose ranking set is the subset named by rankingIDs, in that order.
func NewRegistry(dispatch []Extractor, rankingIDs []string, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		dispatch: make([]Extractor, 0, len(dispatch)),
		byID:     make(map[string]Extractor, len(dispatch)),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	for _, e := range dispatch {
		if _, dup := r.byID[e.ID()]; dup {
			return nil, fmt.Errorf("duplicate extractor id %q", e.ID())
		}
		r.byID[e.ID()] = e
		r.dispatch = append(r.dispatch, e)
	}
	if len(rankingIDs) == 0 {
		return nil, fmt.Errorf("ranking set is empty")
	}
	seen := make(map[string]struct{}, len(rankingIDs))
	for _, id := range rankingIDs {
		e, ok := r.byID[id]
		if !ok {
			return nil, fmt.Errorf("ranking: %w", &UnknownFormatError{ID: id})
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("ranking: duplicate id %q", id)
		}
		seen[id] = struct{}{}
		r.ranking = append(r.ranking, e)
	}
	return r, nil
}

// Default returns the registry with every layout registered and
// DefaultRanking as the automatic-mode set.
func Default(opts ...RegistryOption) *Registry {
	r, err := NewRegistry(All(), DefaultRanking, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// ByID looks an extractor up in the dispatch set.
func (r *Registry) ByID(id string) (Extractor, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// Dispatch returns the extractors reachable by forced id, in registration order.
func (r *Registry) Dispatch() []Extractor {
	return append([]Extractor(nil), r.dispatch...)
}

// Ranking returns the extractors scored in automatic mode, in order.
func (r *Registry) Ranking() []Extractor {
	return append([]Extractor(nil), r.ranking...)
}

// Options lists the automatic choice followed by every dispatchable format.
func (r *Registry) Options() []Option {
	opts := make([]Option, 0, len(r.dispatch)+1)
	opts = append(opts, Option{ID: constants.AutoFormat, Label: constants.AutoLabel})
	for _, e := range r.dispatch {
		opts = append(opts, Option{ID: e.ID(), Label: e.Label()})
	}
	return opts
}

// Parse extracts fields from text. An empty forced id or "auto" selects the
// best-scoring extractor of the ranking set; any other value must name an
// extractor of the dispatch set, and yields confidence 1.
func (r *Registry) Parse(text, forced string) (Result, error) {
	if forced != "" && forced != constants.AutoFormat {
		e, ok := r.byID[forced]
		if !ok {
			return Result{}, &UnknownFormatError{ID: forced}
		}
		r.logger.Debug("parse.forced", "format_id", forced)
		return Result{FormatID: e.ID(), Confidence: 1, Fields: e.Extract(text)}, nil
	}

	clean := normalize.Text(text)
	candidates := make([]Candidate, 0, len(r.ranking))
	best, bestScore := r.ranking[0], r.ranking[0].Detect(clean)
	candidates = append(candidates, Candidate{FormatID: best.ID(), Score: bestScore})
	for _, e := range r.ranking[1:] {
		s := e.Detect(clean)
		candidates = append(candidates, Candidate{FormatID: e.ID(), Score: s})
		if s > bestScore {
			best, bestScore = e, s
		}
	}
	for _, c := range candidates {
		r.logger.Debug("parse.score", "format_id", c.FormatID, "score", c.Score)
	}
	r.logger.Debug("parse.auto", "format_id", best.ID(), "confidence", bestScore)

	return Result{
		FormatID:   best.ID(),
		Confidence: bestScore,
		Fields:     best.Extract(clean),
		Candidates: candidates,
	}, nil
}
