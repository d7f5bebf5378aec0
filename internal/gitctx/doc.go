// Package gitctx collects the files a review should scan.
//
// [Collect] expands command-line paths: directories are walked with
// include/exclude glob filters ("**" matches any number of path segments),
// binary files (a NUL byte in the first 8000 bytes) and oversized files are
// skipped and reported. [StagedFiles] and [ReadStaged] shell out to git so a
// pre-commit hook can review exactly what is about to be committed.
package gitctx
