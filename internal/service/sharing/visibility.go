package sharing

import (
	"github.com/marshalhq/event-coordination-backend/internal/domain/scope"
)

// Visible reports whether one shareable item is visible to the marshal. An
// item with no scope configurations is visible to nobody; malformed
// configurations were already dropped at decode time and simply do not
// match.
func Visible(item ScopeCarrier, mctx *scope.MarshalContext, lookup scope.CheckpointAreas) bool {
	return scope.Evaluate(item.ScopeConfigurations(), mctx, lookup).IsRelevant
}

// FilterVisible keeps the items the marshal may see, preserving input order.
func FilterVisible[T ScopeCarrier](items []T, mctx *scope.MarshalContext, lookup scope.CheckpointAreas) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Visible(item, mctx, lookup) {
			out = append(out, item)
		}
	}
	return out
}
