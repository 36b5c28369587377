package catalog

import "strings"

// Suffix marks the synthetic counterpart of a table, both in the table
// name and in its storage path.
const Suffix = "_synthetic"

// SyntheticName returns the catalog name for a table's synthetic twin.
func SyntheticName(table string) string {
	return table + Suffix
}

// SyntheticLocation derives the storage path for synthetic data from the
// source table's path. Trailing slashes are stripped before suffixing.
func SyntheticLocation(location string) string {
	return strings.TrimRight(location, "/") + Suffix
}

// StagingLocation is where query results for a table are materialized.
func StagingLocation(location string) string {
	return strings.TrimRight(location, "/") + "_athena"
}

// SplitS3 splits an s3://bucket/prefix location into bucket and key prefix.
func SplitS3(location string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, strings.TrimSuffix(prefix, "/"), true
}
