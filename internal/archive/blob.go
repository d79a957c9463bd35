// Package archive pushes digest files to a GitHub repository and builds
// stable links to the archived files.
package archive

import "fmt"

// BlobURL returns the canonical GitHub blob-view URL for a file in a repo.
// repo is "owner/name"; no validation beyond presence is performed.
func BlobURL(repo, branch, relPath string) string {
	return fmt.Sprintf("https://github.com/%s/blob/%s/%s", repo, branch, relPath)
}
