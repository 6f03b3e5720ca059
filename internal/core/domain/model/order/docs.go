// Package order holds the Order aggregate and its delivery state machine.
//
// An order is placed by a requester, carried out by a fulfiller and moves
// through the statuses of the configured Workflow until it reaches that
// workflow's delivered status or is cancelled. While it is in flight the
// fulfiller reports positions, which the aggregate turns into a Tracking
// snapshot (latest point, distance to the destination and ETA).
//
// Order.Transition and Order.ApplyTracking are the only mutators. Both check
// the acting party first so that a caller without rights learns nothing
// about the order's state.
package order
