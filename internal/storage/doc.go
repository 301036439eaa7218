// Package storage persists the little state noticeboard keeps between
// restarts:
//   - the routing requirement cache (rebuilt on "clear cache")
//   - an append-only audit log of operator actions
package storage
