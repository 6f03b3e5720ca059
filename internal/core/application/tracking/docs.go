// Package tracking fans live delivery updates out to the people watching an
// order.
//
// A Hub keeps one room per watched order. Fulfillers publish positions with
// PublishLocation; the hub persists them through the order repository,
// caches the resulting Snapshot in the room and delivers it to every member.
// Committed status changes arrive through BroadcastStatus. Subscribers never
// block the publisher: a full buffer drops the message and a closed
// subscriber is evicted on the next delivery or Sweep.
package tracking
