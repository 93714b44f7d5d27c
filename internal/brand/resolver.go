package brand

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"brandpost-bot/internal/database"
	"brandpost-bot/internal/database/models"
)

// Unknown is the canonical name returned when no resolution step matched.
const Unknown = "Unknown"

// fuzzyThreshold is the minimum partial-ratio score (0..100) a fuzzy
// candidate needs to be accepted.
const fuzzyThreshold = 80

// nameCacheTTL bounds how long the canonical-name list from the directory
// is reused before re-reading.
const nameCacheTTL = 5 * time.Minute

// cyrillicFold maps Cyrillic characters that look identical to Latin ones.
// Submitters typing on a Russian keyboard routinely mix the two.
var cyrillicFold = map[rune]rune{
	'а': 'a', 'в': 'b', 'е': 'e', 'к': 'k', 'м': 'm', 'н': 'h',
	'о': 'o', 'р': 'p', 'с': 'c', 'т': 't', 'у': 'y', 'х': 'x',
	'і': 'i', 'ё': 'e',
}

// Resolution is the outcome of resolving free-text brand input.
type Resolution struct {
	Brand string
	// TargetGroups is the ordered destination list for the brand; the
	// first entry is the primary destination. Empty when the directory
	// has no routing for the brand.
	TargetGroups []string
	TargetTopic  string
}

// Known reports whether the input resolved to a canonical brand.
func (r *Resolution) Known() bool {
	return r.Brand != Unknown
}

// Resolver maps free-text brand input to a canonical brand and its
// destinations. Resolution is a pure read; the canonical-name list from
// the directory is cached briefly to keep the fuzzy step off the database.
type Resolver struct {
	repo database.BrandRepository

	mu          sync.Mutex
	cachedNames []string
	cachedAt    time.Time
	cacheTTL    time.Duration
}

// NewResolver creates a resolver over the brand directory.
func NewResolver(repo database.BrandRepository) *Resolver {
	return &Resolver{repo: repo, cacheTTL: nameCacheTTL}
}

// Resolve runs the resolution cascade: exact directory lookup,
// abbreviation expansion, prefix match, then fuzzy match. Each step
// terminates the cascade on success; when nothing matches the result
// carries Unknown and no destinations.
func (r *Resolver) Resolve(ctx context.Context, input string) (*Resolution, error) {
	normalized := Normalize(input)
	if normalized == "" {
		return &Resolution{Brand: Unknown}, nil
	}

	if res, err := r.lookupInput(ctx, normalized); err != nil {
		return nil, err
	} else if res != nil {
		return res, nil
	}

	if canonical, ok := brandAbbreviations[normalized]; ok {
		return r.resolveCanonical(ctx, canonical)
	}

	if canonical := r.prefixMatch(ctx, normalized); canonical != "" {
		return r.resolveCanonical(ctx, canonical)
	}

	if canonical := r.fuzzyMatch(ctx, normalized); canonical != "" {
		return r.resolveCanonical(ctx, canonical)
	}

	return &Resolution{Brand: Unknown}, nil
}

// lookupInput checks the directory for an exact mapping of the normalized
// input. Returns (nil, nil) on a clean miss.
func (r *Resolver) lookupInput(ctx context.Context, normalized string) (*Resolution, error) {
	mapping, err := r.repo.FindByInput(ctx, normalized)
	if errors.Is(err, database.ErrBrandNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromMapping(mapping), nil
}

// resolveCanonical looks up routing for a canonical name. A canonical
// brand without a directory entry still resolves, just with no routing.
func (r *Resolver) resolveCanonical(ctx context.Context, canonical string) (*Resolution, error) {
	mapping, err := r.repo.FindByCanonical(ctx, canonical)
	if errors.Is(err, database.ErrBrandNotFound) {
		return &Resolution{Brand: canonical}, nil
	}
	if err != nil {
		return nil, err
	}
	return fromMapping(mapping), nil
}

func (r *Resolver) prefixMatch(ctx context.Context, normalized string) string {
	for _, name := range r.candidates(ctx) {
		if strings.HasPrefix(strings.ToLower(name), normalized) {
			return name
		}
	}
	return ""
}

func (r *Resolver) fuzzyMatch(ctx context.Context, normalized string) string {
	best := ""
	bestScore := 0
	for _, name := range r.candidates(ctx) {
		score := fuzzy.PartialRatio(normalized, strings.ToLower(name))
		if score > bestScore {
			best = name
			bestScore = score
		}
	}
	if bestScore > fuzzyThreshold {
		return best
	}
	return ""
}

// candidates returns the canonical names to match against: the static
// table plus whatever the directory knows, directory names first so an
// operator-configured brand wins a prefix tie.
func (r *Resolver) candidates(ctx context.Context) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cachedNames != nil && time.Since(r.cachedAt) < r.cacheTTL {
		return r.cachedNames
	}

	names, err := r.repo.ListCanonicalNames(ctx)
	if err != nil {
		log.Printf("[BrandResolver] Failed to list directory names, using static table only: %v", err)
		names = nil
	}

	seen := make(map[string]struct{}, len(names)+len(knownBrands))
	merged := make([]string, 0, len(names)+len(knownBrands))
	for _, name := range names {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			merged = append(merged, name)
		}
	}
	for _, name := range knownBrands {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			merged = append(merged, name)
		}
	}

	r.cachedNames = merged
	r.cachedAt = time.Now()
	return merged
}

// Normalize lower-cases the input, strips accents, and folds Cyrillic
// look-alike characters to Latin.
func Normalize(input string) string {
	lowered := strings.ToLower(strings.TrimSpace(input))

	decomposed, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		lowered,
	)
	if err != nil {
		decomposed = lowered
	}

	return strings.Map(func(r rune) rune {
		if folded, ok := cyrillicFold[r]; ok {
			return folded
		}
		return r
	}, decomposed)
}

func fromMapping(mapping *models.BrandMapping) *Resolution {
	return &Resolution{
		Brand:        mapping.CanonicalName,
		TargetGroups: mapping.TargetGroups,
		TargetTopic:  mapping.TargetTopic,
	}
}
