// Package domain maps MCP tool and resource calls onto timetable lookups.
//
// Every call follows the same path:
// - validate the parameters with the operation's validator,
// - forward them to the timetables API client,
// - and return the upstream XML body unchanged.
//
// Tools and resources share the validators and the Dispatch wrapper, so a
// failure is classified and logged the same way whichever surface it came from.
package domain
