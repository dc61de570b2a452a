package cortexctx

import (
	"github.com/mvp-joe/cortexctx/internal/cancel"
	"github.com/mvp-joe/cortexctx/internal/localcontext"
)

// GatherLocalContext collects exact/nearby/parent snippets around a cursor
// position (spec.md §4.5), delegating to the engine's shared gatherer so
// its per-position cache is reused across calls.
func (e *Engine) GatherLocalContext(model localcontext.TextModel, pos localcontext.Position, token *cancel.Token) []localcontext.Snippet {
	return e.gatherer.Gather(model, pos, token)
}

// ClearLocalContextCache drops every cached gatherer entry.
func (e *Engine) ClearLocalContextCache() {
	e.gatherer.ClearCache()
}
