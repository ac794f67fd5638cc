// Package rename implements the sequential renaming engine for a gallery
// directory.
//
// A run is a pipeline over a single directory snapshot:
//
//  1. Scan lists regular files with an allowed image extension.
//  2. Classify splits them into already-numbered files (preserved) and
//     files that still need a sequential name.
//  3. Order sorts the unnumbered files: entries with an embedded
//     timestamp first, chronologically, then the rest by lowercase name.
//  4. BuildPlan assigns the next free indices, picks the zero-pad width
//     and validates the plan against collisions and leftover temp names.
//  5. Apply performs the renames in two phases through temporary names
//     so no final name is claimed while another source still holds it.
//
// The plan is computed entirely in memory before any rename happens; every
// planning conflict aborts the run before the first mutation.
package rename
