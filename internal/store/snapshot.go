package store

import (
	"sort"
	"strings"

	"github.com/myruppin/portal-companion/internal/models"
)

const snapshotSeparator = ": "

// EncodeSnapshot serialises grade pairs as sorted "<course>: <grade>" lines.
// The format matches what the mobile app persisted, so an encoded snapshot is
// a stable opaque string suitable for set comparison at the storage level.
func EncodeSnapshot(pairs []models.GradePair) string {
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, p.Course+snapshotSeparator+p.Grade)
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// DecodeSnapshot parses an encoded snapshot back into pairs. Lines without a
// separator decode as a course with no grade recorded; grades containing the
// separator survive because only the first occurrence splits.
func DecodeSnapshot(raw string) []models.GradePair {
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	pairs := make([]models.GradePair, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, snapshotSeparator, 2)
		pair := models.GradePair{Course: parts[0]}
		if len(parts) == 2 {
			pair.Grade = parts[1]
		}
		pairs = append(pairs, pair)
	}
	return pairs
}
