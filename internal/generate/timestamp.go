package generate

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
)

// NewestModificationTime returns the latest modification time of paths.
// An empty list yields the zero time; a path that cannot be read is an
// error, since a floor computed without it could skip a stale output.
func NewestModificationTime(paths ...[]string) (time.Time, error) {
	var newest time.Time
	for _, group := range paths {
		for _, p := range group {
			info, err := os.Stat(p)
			if err != nil {
				return time.Time{}, errors.Wrapf(err, "failed to read modification time of dependency %s", p)
			}
			if info.ModTime().After(newest) {
				newest = info.ModTime()
			}
		}
	}
	return newest, nil
}
