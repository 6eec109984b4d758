package redeem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"Reclaim/internal/claim"
)

// LoadedClaim is a claim together with the file it was read from.
type LoadedClaim struct {
	Path  string
	Claim *claim.Claim
}

// LoadClaims reads every regular file in dir as a claim, oldest first.
// Files with the same modification time are ordered by path. Hidden files,
// including writes still in progress, are skipped.
func LoadClaims(dir string) ([]LoadedClaim, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ValidationError{Kind: ErrReadDir, Paths: []string{dir}, Position: -1, Err: err}
	}

	type file struct {
		path    string
		modTime time.Time
	}

	files := make([]file, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())

		info, err := os.Stat(path)
		if err != nil {
			return nil, &ValidationError{Kind: ErrFileRead, Paths: []string{path}, Position: -1, Err: err}
		}
		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, file{path: path, modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.Before(files[j].modTime)
		}
		return files[i].path < files[j].path
	})

	claims := make([]LoadedClaim, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, &ValidationError{Kind: ErrFileRead, Paths: []string{f.path}, Position: -1, Err: err}
		}

		c, err := claim.Decode(data)
		if err != nil {
			return nil, &ValidationError{Kind: ErrDeserialize, Paths: []string{f.path}, Position: -1, Err: err}
		}

		claims = append(claims, LoadedClaim{Path: f.path, Claim: c})
	}

	return claims, nil
}
