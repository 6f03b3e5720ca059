// Package rating models the feedback a requester leaves once an order is
// delivered and the per-fulfiller summary those ratings roll up into.
package rating
