package queries

import (
	"context"
	"errors"
	"fmt"

	"waterline/internal/core/application/tracking"
	"waterline/internal/pkg/errs"
)

type GetTrackingSnapshotQueryHandler struct {
	source SnapshotSource
}

func NewGetTrackingSnapshotQueryHandler(source SnapshotSource) (*GetTrackingSnapshotQueryHandler, error) {
	if source == nil {
		return nil, errors.New("snapshot source is required")
	}
	return &GetTrackingSnapshotQueryHandler{source: source}, nil
}

// Handle returns the cached room snapshot when the order is being watched,
// otherwise the stored one. Only the requester and the fulfiller may read it.
func (h *GetTrackingSnapshotQueryHandler) Handle(
	ctx context.Context,
	query GetTrackingSnapshotQuery,
) (tracking.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return tracking.Snapshot{}, err
	}

	snapshot, err := h.source.CurrentSnapshot(ctx, query.OrderID())
	if err != nil {
		return tracking.Snapshot{}, err
	}
	if !snapshot.IsParty(query.Actor()) {
		return tracking.Snapshot{}, errs.NewForbiddenError(query.Actor().String(),
			fmt.Sprintf("track order %s", query.OrderID()))
	}
	return snapshot, nil
}
