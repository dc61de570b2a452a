package cortexctx

// ContextScope identifies a node in the engine's hierarchical context-key
// tree (spec.md §3): a session's editor state, with child scopes (e.g. one
// per open document) inheriting from a shared root.
type ContextScope int

// RootScope is the engine's single root context scope. It always exists
// and can never be disposed.
func (e *Engine) RootScope() ContextScope {
	return ContextScope(e.contextTree.Root())
}

// CreateChildScope creates a new scope inheriting from parent.
func (e *Engine) CreateChildScope(parent ContextScope) (ContextScope, error) {
	id, err := e.contextTree.CreateChild(int(parent))
	return ContextScope(id), err
}

// SetContextValue stores a value directly on scope.
func (e *Engine) SetContextValue(scope ContextScope, key string, value any) error {
	return e.contextTree.Set(int(scope), key, value)
}

// GetContextValue looks up key starting at scope and falling through to
// ancestor scopes.
func (e *Engine) GetContextValue(scope ContextScope, key string) (any, bool) {
	return e.contextTree.Get(int(scope), key)
}

// DisposeScope removes scope and its descendants. It fails for the root
// scope or a scope with outstanding lookups.
func (e *Engine) DisposeScope(scope ContextScope) error {
	return e.contextTree.Dispose(int(scope))
}

// CollectAllValues merges scope's values with every ancestor scope's into a
// single map, with scope's own entries (and nearer ancestors') winning over
// farther ones for the same key.
func (e *Engine) CollectAllValues(scope ContextScope) (map[string]any, error) {
	return e.contextTree.CollectAllValues(int(scope))
}
