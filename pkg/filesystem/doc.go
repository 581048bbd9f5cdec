// Package filesystem provides filesystem access for pkgweave.
//
// Every build operation receives an afero.Fs rooted at the workspace
// instead of relying on the process working directory. Production code
// uses NewOS, tests use NewMemory.
package filesystem
