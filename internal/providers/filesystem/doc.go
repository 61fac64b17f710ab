// Package filesystem provides the fs_read, fs_write, and fs_list tools.
//
// These sit beside the shell tools for the common cases where spawning a
// shell just to read or drop a file is wasteful. fs_list supports doublestar
// glob patterns (**/*.go) in addition to plain directory listings.
package filesystem
