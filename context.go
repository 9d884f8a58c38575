// FILE: lixenwraith/globalconfig/context.go
package globalconfig

import "context"

type ctxKey string

const storeKey ctxKey = "globalconfig_store"

// ContextWithStore returns a context carrying the store.
func ContextWithStore(ctx context.Context, s *Store) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, storeKey, s)
}

// StoreFromContext extracts the store from context if present.
func StoreFromContext(ctx context.Context) (*Store, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(storeKey).(*Store)
	return s, ok && s != nil
}
