package reconciler

import (
	"sort"

	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/persistence"
)

// documentPlan is the work one reconciliation pass intends for one document,
// grouped by action so each action dispatches as a single batched task.
type documentPlan struct {
	documentID string
	requests   map[models.IndexAction][]persistence.ClaimRequest
}

// buildPlans classifies every record via its pending action and groups the
// resulting claim requests by document. Records with nothing to do are
// skipped. Document order is stable for deterministic logging.
func buildPlans(records []*models.DocumentIndexRecord) []*documentPlan {
	byDocument := make(map[string]*documentPlan)

	for _, record := range records {
		action, pending := record.PendingAction()
		if !pending {
			continue
		}

		plan, ok := byDocument[record.DocumentID]
		if !ok {
			plan = &documentPlan{
				documentID: record.DocumentID,
				requests:   make(map[models.IndexAction][]persistence.ClaimRequest),
			}
			byDocument[record.DocumentID] = plan
		}

		plan.requests[action] = append(plan.requests[action], persistence.ClaimRequest{
			IndexType: record.IndexType,
			Action:    action,
			Version:   record.Version,
		})
	}

	plans := make([]*documentPlan, 0, len(byDocument))
	for _, plan := range byDocument {
		plans = append(plans, plan)
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].documentID < plans[j].documentID
	})

	return plans
}
