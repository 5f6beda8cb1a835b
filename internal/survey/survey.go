// Package survey handles the tabular side of the pipeline: reading survey
// CSV exports, redacting PII from free-text answers, detecting comment
// language and writing the enriched table back out. The extraction core
// never touches files; it sees only the Comment values produced here.
package survey

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// DefaultMaxLength is the redacted-comment length cutoff; longer comments
// are excluded from extraction.
const DefaultMaxLength = 4000

// Comment is one survey row's free-text answer with preprocessing state.
type Comment struct {
	// Index is the row position in the source file, preserved so output
	// order is reproducible.
	Index int

	// Text is the original answer, untouched.
	Text string

	// Redacted is Text with PII patterns replaced.
	Redacted string

	// Language is a lowercase ISO 639-1 code, or "-" when undetermined.
	Language string

	// Keep marks rows that pass the language and length filters.
	Keep bool
}

// Dataset is a survey CSV held in memory with its comment column resolved.
type Dataset struct {
	Header     []string
	Records    [][]string
	commentCol int
}

// Read loads a CSV and locates commentColumn in its header.
func Read(path, commentColumn string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("survey: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("survey: reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("survey: %s is empty", path)
	}

	col := -1
	for i, name := range rows[0] {
		if name == commentColumn {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, fmt.Errorf("survey: %s has no column %q", path, commentColumn)
	}

	return &Dataset{Header: rows[0], Records: rows[1:], commentCol: col}, nil
}

// CommentText returns the raw comment of record i, or "" when the record is
// short. Missing cells are empty comments, not errors.
func (d *Dataset) CommentText(i int) string {
	rec := d.Records[i]
	if d.commentCol >= len(rec) {
		return ""
	}
	return rec[d.commentCol]
}

// WriteWithColumns writes the dataset with extra columns appended. The
// comment column is replaced by cleaned, the lightly normalized text that
// phrase spans were resolved against. Rows whose keep entry is false are
// omitted from the output; a nil keep writes every row. cleaned, extra and
// keep are all index-aligned with Records.
func (d *Dataset) WriteWithColumns(path string, cleaned []string, extra map[string][]string, order []string, keep []bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("survey: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, d.Header...), order...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("survey: writing %s: %w", path, err)
	}

	for i, rec := range d.Records {
		if keep != nil && i < len(keep) && !keep[i] {
			continue
		}
		row := append([]string{}, rec...)
		for len(row) < len(d.Header) {
			row = append(row, "")
		}
		if i < len(cleaned) {
			row[d.commentCol] = cleaned[i]
		}
		for _, name := range order {
			col := extra[name]
			if i < len(col) {
				row = append(row, col[i])
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("survey: writing %s: %w", path, err)
		}
	}

	w.Flush()
	return w.Error()
}

// piiPatterns are applied in order; each match is replaced with a bracketed
// placeholder before anything else sees the text.
var piiPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`), "EMAIL"},
	{regexp.MustCompile(`(?:\+44|\b0)(?:[ -]?\d){9,10}\b`), "PHONE"},
	{regexp.MustCompile(`\b[A-Za-z]{2}\s?\d{2}\s?\d{2}\s?\d{2}\s?[A-Za-z]\b`), "NINO"},
	{regexp.MustCompile(`\b[A-Za-z]{1,2}\d[A-Za-z\d]?\s?\d[A-Za-z]{2}\b`), "POSTCODE"},
	{regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`), "CARD"},
}

// RedactPII replaces personally identifying patterns with placeholders.
func RedactPII(s string) string {
	for _, p := range piiPatterns {
		s = p.re.ReplaceAllString(s, "["+p.replacement+"]")
	}
	return s
}

// Detector wraps the lingua language detector.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector builds a detector over the languages commonly seen in the
// survey data.
func NewDetector() *Detector {
	langs := []lingua.Language{
		lingua.English, lingua.Welsh, lingua.French, lingua.German,
		lingua.Spanish, lingua.Portuguese, lingua.Italian, lingua.Polish,
	}
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build(),
	}
}

// Detect returns a lowercase ISO 639-1 code, or "-" when the language
// cannot be determined (short or ambiguous text).
func (d *Detector) Detect(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	lang, ok := d.detector.DetectLanguageOf(s)
	if !ok {
		return "-"
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// Preprocess redacts, detects language and applies the length and language
// filters to every record of the dataset. Undetermined language is kept: a
// two-word comment is not evidence of non-English.
func Preprocess(d *Dataset, det *Detector, maxLength int) []Comment {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	comments := make([]Comment, len(d.Records))
	for i := range d.Records {
		c := Comment{Index: i, Text: d.CommentText(i)}
		c.Redacted = RedactPII(c.Text)
		c.Language = det.Detect(c.Redacted)
		c.Keep = len(c.Redacted) < maxLength && (c.Language == "en" || c.Language == "-")
		comments[i] = c
	}
	return comments
}
