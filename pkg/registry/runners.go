package registry

import (
	"github.com/promoteai/superrag/pkg/runners/merge"
	"github.com/promoteai/superrag/pkg/runners/rerank"
	"github.com/promoteai/superrag/pkg/runners/start"
	"github.com/promoteai/superrag/pkg/runners/vectorsearch"
)

// RegisterDefaultRunners registers all built-in node runner factories with
// the registry.
func (r *Registry) RegisterDefaultRunners() {
	r.RegisterRunner(start.NewStartRunnerFactory())

	r.RegisterRunner(vectorsearch.NewVectorSearchRunnerFactory())

	r.RegisterRunner(merge.NewMergeRunnerFactory())

	r.RegisterRunner(rerank.NewRerankRunnerFactory())
}
