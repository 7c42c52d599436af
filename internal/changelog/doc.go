// Package changelog implements the changelog document model and merge
// algorithm for relnote.
//
// A changelog is a markdown document whose version entries are marked by
// headings at a configured level (level 2 by default), newest first. This
// package provides:
//   - section extraction over the block model (a heading plus the blocks
//     following it until the next heading at the same or shallower level)
//   - building a version section from a set of pull requests, grouped into
//     labeled sections with a contributors list
//   - the merge algorithm that inserts or replaces a version section while
//     leaving every other block untouched
//   - entry accessors for deduplication and raw textual extraction for
//     publishing release notes
package changelog
