package services

import (
	"context"

	"medexpenses/internal/models"
	"medexpenses/internal/repository"
)

// labels maps lookup ids to their display text.
type labels struct {
	regions map[uint]string
	smokers map[uint]string
	sexes   map[uint]string
}

func loadPatientLabels(ctx context.Context, lookups repository.LookupRepository) (*labels, error) {
	regions, err := lookups.Regions(ctx)
	if err != nil {
		return nil, err
	}
	smokers, err := lookups.Smokers(ctx)
	if err != nil {
		return nil, err
	}
	sexes, err := lookups.Sexes(ctx)
	if err != nil {
		return nil, err
	}

	l := &labels{
		regions: make(map[uint]string, len(regions)),
		smokers: make(map[uint]string, len(smokers)),
		sexes:   make(map[uint]string, len(sexes)),
	}
	for _, r := range regions {
		l.regions[r.ID] = r.RegionName
	}
	for _, s := range smokers {
		l.smokers[s.ID] = s.IsSmoker
	}
	for _, s := range sexes {
		l.sexes[s.ID] = s.SexLabel
	}
	return l, nil
}

func (l *labels) region(id uint) string { return labelOr(l.regions, id) }
func (l *labels) smoker(id uint) string { return labelOr(l.smokers, id) }
func (l *labels) sex(id uint) string    { return labelOr(l.sexes, id) }

func loadRoleNames(ctx context.Context, lookups repository.LookupRepository) (map[uint]string, error) {
	roles, err := lookups.Roles(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(roles))
	for _, r := range roles {
		names[r.ID] = r.RoleName
	}
	return names, nil
}

func labelOr(m map[uint]string, id uint) string {
	if v, ok := m[id]; ok {
		return v
	}
	return models.UnknownLabel
}
