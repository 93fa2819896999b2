package service

import (
	"path/filepath"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/icut-app/icut/internal/models"
)

/*
 * Normalization here follows github.com/lithammer/fuzzysearch/fuzzy
 * internals, which are not exported for external use.
 */

var (
	normalizeTransformer transform.Transformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	transformer                                = transform.Chain(normalizeTransformer, unicodeFoldTransformer{})
)

type assetRank struct {
	asset models.Asset
	rank  int
}

func rankCmp(ar1, ar2 assetRank) int {
	return ar1.rank - ar2.rank
}

// filterRank ranks assets by Levenshtein distance of their
// file base name to the query, ascending.
func filterRank(assets []models.Asset, filter models.AssetFilter) []assetRank {
	out := make([]assetRank, 0, len(assets))

	query := stringTransform(filter.Query)

	for _, asset := range assets {
		name := filepath.Base(asset.FilePath)
		out = append(out, assetRank{
			asset: asset,
			rank:  fuzzy.LevenshteinDistance(stringTransform(name), query),
		})
	}

	slices.SortStableFunc(out, rankCmp)

	return out
}

func stringTransform(s string) (transformed string) {
	var err error
	transformed, _, err = transform.String(transformer, s)
	if err != nil {
		transformed = s
	}

	return
}

type unicodeFoldTransformer struct{ transform.NopResetter }

func (unicodeFoldTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for _, r := range string(src) {
		if r == utf8.RuneError {
			// Ranging over a string yields 0xFFFD for an invalid
			// sequence and advances a single byte.
			nSrc++
		} else {
			nSrc += utf8.RuneLen(r)
		}
		r = unicode.ToLower(r)
		x := utf8.RuneLen(r)
		if x > len(dst[nDst:]) {
			err = transform.ErrShortDst
			break
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
	}
	return nDst, nSrc, err
}
