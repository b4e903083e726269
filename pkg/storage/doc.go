// Package storage persists downloaded media on disk.
//
// Files are laid out per user, then per category:
//
//	output/
//	  alice/
//	    posts/
//	    stories/
//	    highlights/
//	    profile_pic/
//
// The Manager indexes what is already on disk at startup and exposes
// Exists for skip-existing checks, so interrupted batches resume
// without re-downloading. Writes are atomic: temp file plus rename.
package storage
