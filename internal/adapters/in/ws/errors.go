package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/pkg/errs"
)

var errMalformed = errors.New("malformed message")

func decodeOrderRef(data json.RawMessage) (kernel.UUID, error) {
	var ref OrderRef
	if err := json.Unmarshal(data, &ref); err != nil {
		// clients may also send the bare id string
		var id string
		if strErr := json.Unmarshal(data, &id); strErr != nil {
			return kernel.UUID{}, fmt.Errorf("%w: %w", errMalformed, err)
		}
		ref.OrderID = id
	}
	return kernel.UUIDFromString(ref.OrderID)
}

func forbidden(actor kernel.Actor, orderID kernel.UUID) error {
	return errs.NewForbiddenError(actor.String(), "watch order "+orderID.String())
}
