package router

import (
	"strings"
)

// Kind names a resolution strategy
type Kind string

const (
	KindAsset            Kind = "asset"
	KindSSR              Kind = "ssr"
	KindAPI              Kind = "api"
	KindRewriteThenRoute Kind = "rewrite_then_route"

	// Strategies reported on a Result but never returned by Classify
	KindRewrite  Kind = "rewrite"
	KindRoute    Kind = "route"
	KindNotFound Kind = "not_found"
)

const (
	ssrPrefix = "/ssr/"
	apiPrefix = "/api/"
)

// Classification is the outcome of Classify
type Classification struct {
	Kind Kind
	// Target is the SSR variable for KindSSR, the sub-path for KindAPI and
	// the request path otherwise.
	Target string
	// Ext is the text after the last dot of the last segment, for KindAsset
	Ext string
}

// Classify picks the resolution strategy for a decoded request path.
// The first matching rule wins: a dot in the last segment means an asset,
// then the /ssr/ and /api/ prefixes, and everything else is a page.
func Classify(path string) Classification {
	last := path[strings.LastIndexByte(path, '/')+1:]
	if dot := strings.LastIndexByte(last, '.'); dot >= 0 {
		return Classification{Kind: KindAsset, Target: path, Ext: last[dot+1:]}
	}

	if rest, ok := strings.CutPrefix(path, ssrPrefix); ok {
		return Classification{Kind: KindSSR, Target: rest}
	}
	if rest, ok := strings.CutPrefix(path, apiPrefix); ok {
		return Classification{Kind: KindAPI, Target: rest}
	}

	return Classification{Kind: KindRewriteThenRoute, Target: path}
}
