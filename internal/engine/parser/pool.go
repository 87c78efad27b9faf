package parser

import (
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PoolStats counts parsers allocated by a pool and those currently lent out.
type PoolStats struct {
	Created int64
	Leased  int64
}

// ParserPool reuses Python parsers between runs so watch mode does not
// allocate one per re-analysis. Safe for concurrent use.
type ParserPool struct {
	lang    *sitter.Language
	pool    sync.Pool
	created atomic.Int64
	leased  atomic.Int64
}

func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{lang: lang}
	p.pool.New = func() any {
		p.created.Add(1)
		sp := sitter.NewParser()
		_ = sp.SetLanguage(lang)
		return sp
	}
	return p
}

func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	p.leased.Add(1)
	return sp
}

// Put resets sp and makes it available again. sp must not be used afterwards.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.leased.Add(-1)
	sp.Reset()
	p.pool.Put(sp)
}

func (p *ParserPool) Stats() PoolStats {
	return PoolStats{Created: p.created.Load(), Leased: p.leased.Load()}
}
