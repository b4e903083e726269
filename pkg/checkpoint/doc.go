// Package checkpoint saves and resumes batch progress.
//
// A checkpoint records the last enumeration cursor and the set of
// targets already completed, so a run interrupted by a rate-limit
// cooldown or a cancel picks up where it left off. Files are written
// atomically and live in the platform data directory:
//   - Linux: ~/.local/share/igloader/checkpoints/
//   - macOS: ~/Library/Application Support/igloader/checkpoints/
//   - Windows: %APPDATA%/igloader/checkpoints/
package checkpoint
