package application

import (
	"github.com/randallong/irentstuff-transactions/internal/domain"
)

// TargetService answers questions about the static target table.
type TargetService struct {
	Table domain.TargetTable
}

// List returns every configured target in table order.
func (s *TargetService) List() []domain.Target {
	return s.Table.Targets()
}

// Get looks up one target by ID.
func (s *TargetService) Get(id domain.TargetID) (domain.Target, error) {
	return s.Table.Get(id)
}

// InGroup returns the targets in one feature group, in table order.
func (s *TargetService) InGroup(g domain.Group) []domain.Target {
	return s.Table.InGroup(g)
}

// Decide previews the deployment decisions for a raw trigger message
// without running the pipeline.
func (s *TargetService) Decide(rawMessage string) domain.DecisionSet {
	var engine domain.DecisionEngine
	return engine.Decide(domain.NormalizeTrigger(rawMessage), s.Table)
}
