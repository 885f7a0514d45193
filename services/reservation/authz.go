package reservation

import (
	"context"
	"fmt"

	resourceRepo "tourspot/database/repository/resource"
	"tourspot/models"
)

// AuthorizationPolicy decides whether an actor may apply a transition.
// The engine only enforces the state graph; who may drive it is this
// collaborator's concern.
type AuthorizationPolicy interface {
	CanTransition(ctx context.Context, actorID string, r *models.Reservation, newStatus models.Status) (bool, error)
}

// OwnerRequesterPolicy is the default policy: the resource owner may
// confirm, reject, complete or refund; the requester may cancel. Either
// party may cancel a pending reservation.
type OwnerRequesterPolicy struct {
	Resources resourceRepo.Repository
}

func (p *OwnerRequesterPolicy) CanTransition(ctx context.Context, actorID string, r *models.Reservation, newStatus models.Status) (bool, error) {
	switch newStatus {
	case models.StatusCancelled:
		if actorID == r.RequesterID {
			return true, nil
		}
		return p.isOwner(ctx, actorID, r)
	case models.StatusConfirmed, models.StatusRejected, models.StatusCompleted, models.StatusRefunded:
		return p.isOwner(ctx, actorID, r)
	}
	return false, nil
}

func (p *OwnerRequesterPolicy) isOwner(ctx context.Context, actorID string, r *models.Reservation) (bool, error) {
	resource, err := p.Resources.GetByID(ctx, r.ResourceID)
	if err != nil {
		return false, fmt.Errorf("authorization lookup: %w", err)
	}
	return resource.OwnerID == actorID, nil
}
