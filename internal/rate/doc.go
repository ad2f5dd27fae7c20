// Package rate implements Redis fixed-window counters for failed logins and
// registrations.
//
// # Window semantics
//
// INCR + EXPIRE on the first hit. Keys, under the configured prefix:
//   - rl:login:<email>  failed logins per email
//   - rl:loginip:<ip>   failed logins per client IP
//   - rl:register:<ip>  registrations per client IP
package rate
