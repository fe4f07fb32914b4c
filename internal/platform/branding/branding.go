// Package branding holds the user-visible product identity.
package branding

// AppName is the product name reported to MCP clients.
const AppName = "DB Timetables"

// Version identifies the released server version.
const Version = "1.0.0"
