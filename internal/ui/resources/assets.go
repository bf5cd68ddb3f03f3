// Package resources provides static asset handling for the UI server.
//
// Build with -tags dev to serve assets from disk and enable /reload.
package resources

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"
