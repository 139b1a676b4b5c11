package backfill

import (
	"encoding/json"
	"fmt"

	"github.com/inful/mdfp"

	"github.com/brightsciences/lessonpress/internal/content"
)

// fingerprintMeta is the canonical metadata subset that participates in the
// record fingerprint. A struct rather than the record itself so field order
// is fixed and future record fields don't silently invalidate every ledger
// entry.
type fingerprintMeta struct {
	Title      string                   `json:"title"`
	Subject    string                   `json:"subject"`
	GradeLevel string                   `json:"gradeLevel"`
	ImagePath  string                   `json:"imagePath"`
	LogoPath   string                   `json:"logoPath"`
	Questions  []content.RubricQuestion `json:"questions"`
}

// Fingerprint derives the change-detection fingerprint for a record. The
// metadata and the body hash as separate parts, so reformatting the record
// file without changing either does not force a re-render.
func Fingerprint(rec *content.Record) (string, error) {
	meta, err := json.Marshal(fingerprintMeta{
		Title:      rec.Title,
		Subject:    string(rec.Subject),
		GradeLevel: string(rec.GradeLevel),
		ImagePath:  rec.ImagePath,
		LogoPath:   rec.LogoPath,
		Questions:  rec.Questions,
	})
	if err != nil {
		return "", fmt.Errorf("marshal fingerprint metadata: %w", err)
	}
	return mdfp.CalculateFingerprintFromParts(string(meta), rec.Body), nil
}
