// Package search implements fuzzy_search, match_words, and match_phrase
// over either representation of a PATRICIA trie index — a live directory
// tree or a folded nested-tar archive — behind one Resolver interface, so
// the query logic itself never needs to know which representation it is
// running against.
package search

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/standardbeagle/patriciasearch/internal/token"
)

// Resolver locates the postings for a single query token in one index
// representation. FuzzyResolve collects every posting at or below the
// token's node (prefix match); ExactResolve collects only the postings at
// the token's own node (exact match).
type Resolver interface {
	FuzzyResolve(ctx context.Context, tok string) (map[string]struct{}, error)
	ExactResolve(ctx context.Context, tok string) (map[string]struct{}, error)
}

// Searcher exposes the three query operations over a Resolver.
type Searcher struct {
	resolver Resolver
}

// New wraps resolver in a Searcher.
func New(resolver Resolver) *Searcher {
	return &Searcher{resolver: resolver}
}

// FuzzySearch treats every query token as a prefix and combines their
// resolved source sets by union (inclusive=true) or intersection
// (inclusive=false, the default AND semantics).
func (s *Searcher) FuzzySearch(ctx context.Context, query string, inclusive bool) (map[string]struct{}, error) {
	return s.combine(ctx, token.Tokens(query), inclusive, s.resolver.FuzzyResolve)
}

// MatchWords treats every query token as an exact match and combines their
// resolved source sets the same way FuzzySearch does.
func (s *Searcher) MatchWords(ctx context.Context, query string, inclusive bool) (map[string]struct{}, error) {
	return s.combine(ctx, token.Tokens(query), inclusive, s.resolver.ExactResolve)
}

// MatchPhrase requires the query tokens to appear, in order, as a
// contiguous subsequence of a source's own tokens. If fuzzy, the final
// query token matches as a prefix instead of exactly. A single-token query
// delegates directly to FuzzySearch/MatchWords.
func (s *Searcher) MatchPhrase(ctx context.Context, query string, fuzzy bool) (map[string]struct{}, error) {
	tokens := token.Tokens(query)
	if len(tokens) == 0 {
		return map[string]struct{}{}, nil
	}
	if len(tokens) == 1 {
		if fuzzy {
			return s.FuzzySearch(ctx, query, false)
		}
		return s.MatchWords(ctx, query, false)
	}

	last := tokens[len(tokens)-1]
	var endSet map[string]struct{}
	var err error
	if fuzzy {
		endSet, err = s.resolver.FuzzyResolve(ctx, last)
	} else {
		endSet, err = s.resolver.ExactResolve(ctx, last)
	}
	if err != nil {
		return nil, err
	}
	if len(endSet) == 0 {
		return map[string]struct{}{}, nil
	}

	prefixTokens := tokens[:len(tokens)-1]
	candidates, err := s.combine(ctx, prefixTokens, false, s.resolver.ExactResolve)
	if err != nil {
		return nil, err
	}

	result := make(map[string]struct{})
	for src := range intersect(candidates, endSet) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		ok, err := verifyPhrase(src, tokens, fuzzy)
		if err != nil {
			// unreadable source: skip rather than fail the whole query.
			continue
		}
		if ok {
			result[src] = struct{}{}
		}
	}
	return result, nil
}

func (s *Searcher) combine(ctx context.Context, tokens []string, inclusive bool, resolve func(context.Context, string) (map[string]struct{}, error)) (map[string]struct{}, error) {
	var result map[string]struct{}
	for i, tok := range tokens {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		set, err := resolve(ctx, tok)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			result = set
			continue
		}
		if inclusive {
			result = union(result, set)
		} else {
			result = intersect(result, set)
		}
	}
	if result == nil {
		result = make(map[string]struct{})
	}
	return result, nil
}

func verifyPhrase(source string, queryTokens []string, fuzzy bool) (bool, error) {
	content, err := os.ReadFile(source)
	if err != nil {
		return false, err
	}
	fileTokens := token.Tokens(string(content))
	n, m := len(fileTokens), len(queryTokens)
	for start := 0; start+m <= n; start++ {
		matched := true
		for i := 0; i < m; i++ {
			ft := fileTokens[start+i]
			qt := queryTokens[i]
			if i == m-1 && fuzzy {
				if !strings.HasPrefix(ft, qt) {
					matched = false
					break
				}
				continue
			}
			if ft != qt {
				matched = false
				break
			}
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for k := range small {
		if _, ok := big[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// parseIndLines splits a ".ind" file's content into its non-empty lines,
// one source path per line.
func parseIndLines(content []byte) map[string]struct{} {
	out := make(map[string]struct{})
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			out[line] = struct{}{}
		}
	}
	return out
}
