// Package kernel holds the value objects shared by every aggregate of the engine.
//
//   - UUID wraps github.com/google/uuid and rejects the nil UUID.
//   - Coordinates is a validated latitude/longitude pair in degrees.
//   - Distance and EstimateArrival are the pure distance/ETA calculator used by
//     the tracking hub: haversine great-circle distance on a 6371 km sphere and a
//     naive arrival estimate at AverageSpeedKmh.
//   - Actor is the already-authenticated identity (ID + Role) that commands act on behalf of.
//
// All types are immutable values and safe for concurrent use.
package kernel
