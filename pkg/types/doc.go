// Package types defines the Store and Table interfaces, the project-management
// entity types and their partial-update patches, and the standard errors for
// the pmstore record store.
package types
