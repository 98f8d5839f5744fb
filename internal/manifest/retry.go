package manifest

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"cardpress/internal/logging"
)

// retrySuffix is appended to the input file's base name for the retry manifest.
const retrySuffix = "_failed"

// BuildRetry derives a manifest containing only the failed records, with each
// record's original payload preserved unchanged. Returns nil when no keys
// failed. Keys that match no record (schema drift between run and manifest)
// produce a distinct warning instead of being silently dropped.
func BuildRetry(original *Manifest, failedKeys []string, logger *slog.Logger) *Manifest {
	if len(failedKeys) == 0 {
		return nil
	}
	logger = logging.NewComponentLogger(logger, "retry")

	deduped := make(map[string]struct{}, len(failedKeys))
	for _, key := range failedKeys {
		deduped[key] = struct{}{}
	}
	sorted := make([]string, 0, len(deduped))
	for key := range deduped {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)

	matched := make(map[string]struct{}, len(sorted))
	retry := &Manifest{Records: make([]Record, 0, len(sorted))}
	for _, r := range original.Records {
		if _, failed := deduped[r.Key]; !failed {
			continue
		}
		retry.Records = append(retry.Records, r)
		matched[r.Key] = struct{}{}
	}

	for _, key := range sorted {
		if _, ok := matched[key]; !ok {
			logger.Warn("failed key not present in the original manifest, cannot include it in the retry set",
				logging.String(logging.FieldCardKey, key),
			)
		}
	}

	if len(retry.Records) == 0 {
		return nil
	}
	return retry
}

// RetryPath names the retry manifest after the input: base name plus a fixed
// suffix, same extension, same directory.
func RetryPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	return base + retrySuffix + ext
}
