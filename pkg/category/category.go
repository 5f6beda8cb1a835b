// Package category provides the default regex-based lexical classifiers:
// one grouping verb phrases into canonical verb groups, one mapping noun
// phrases to topic categories. Both are pure lookups over lowercase string
// content with an "unknown" fallback, and both satisfy mention.Categorizer.
package category

import "regexp"

// Unknown is returned when no pattern matches. It is a visible category
// label, not an error.
const Unknown = "unknown"

type entry struct {
	label string
	re    *regexp.Regexp
}

// Table is an ordered list of regex patterns; the first match wins.
type Table struct {
	entries []entry
}

// NewTable compiles an ordered label->pattern list. A pattern that fails to
// compile is a configuration error.
func NewTable(pairs [][2]string) (*Table, error) {
	t := &Table{}
	for _, p := range pairs {
		re, err := regexp.Compile(p[1])
		if err != nil {
			return nil, err
		}
		t.entries = append(t.entries, entry{label: p[0], re: re})
	}
	return t, nil
}

// Categorize returns the label of the first matching pattern, or Unknown.
func (t *Table) Categorize(s string) string {
	for _, e := range t.entries {
		if e.re.MatchString(s) {
			return e.label
		}
	}
	return Unknown
}

func mustTable(pairs [][2]string) *Table {
	t, err := NewTable(pairs)
	if err != nil {
		panic(err)
	}
	return t
}

// VerbGroups groups verb phrases: "applied", "applying for" and "apply"
// all land in the "apply" group.
func VerbGroups() *Table {
	return mustTable([][2]string{
		{"apply", `\b(appl(y|ies|ied|ying)|request(s|ed|ing)?)\b`},
		{"renew", `\brenew(s|ed|ing|al)?\b`},
		{"pay", `\b(pay(s|ing)?|paid|repay)\b`},
		{"claim", `\bclaim(s|ed|ing)?\b`},
		{"register", `\bregist(er(s|ed|ing)?|ration)\b`},
		{"report", `\breport(s|ed|ing)?\b`},
		{"update", `\b(updat(e|es|ed|ing)|chang(e|es|ed|ing)|amend(s|ed|ing)?)\b`},
		{"cancel", `\bcancel(s|led|ling|lation)?\b`},
		{"check", `\b(check(s|ed|ing)?|verif(y|ies|ied|ying))\b`},
		{"find", `\b(find(s|ing)?|found|search(es|ed|ing)?|look(s|ed|ing)?)\b`},
		{"contact", `\b(contact(s|ed|ing)?|call(s|ed|ing)?|phone(s|d)?|email(s|ed|ing)?)\b`},
		{"download", `\b(download(s|ed|ing)?|print(s|ed|ing)?)\b`},
		{"sign-in", `\b(sign(s|ed|ing)? in|log(s|ged|ging)? in|login)\b`},
		{"submit", `\bsubmit(s|ted|ting)?\b`},
		{"book", `\bbook(s|ed|ing)?\b`},
		{"track", `\btrack(s|ed|ing)?\b`},
		{"understand", `\bunderstand(s|ing)?\b`},
		{"wait", `\bwait(s|ed|ing)?\b`},
	})
}

// Themes maps noun phrases to topic categories.
func Themes() *Table {
	return mustTable([][2]string{
		{"tax", `\b(tax(es)?|hmrc|vat|self[ -]assessment|paye)\b`},
		{"benefits", `\b(benefit(s)?|universal credit|tax credit(s)?|allowance|jobseeker)\b`},
		{"passport", `\bpassport(s)?\b`},
		{"visa-immigration", `\b(visa(s)?|immigration|settled status|citizenship|brp)\b`},
		{"driving", `\b(driving licence|dvla|vehicle(s)?|mot|car tax|licence)\b`},
		{"business", `\b(business(es)?|company|companies house|self[ -]employ(ed|ment))\b`},
		{"employment", `\b(job(s)?|employ(er|ee|ment)|redundancy|furlough|wage(s)?|payslip)\b`},
		{"pension", `\b(pension(s)?|retirement|state pension)\b`},
		{"health", `\b(nhs|health|doctor|vaccin(e|ation)|prescription|isolat(e|ion))\b`},
		{"education", `\b(school(s)?|student(s)?|university|course(s)?|apprenticeship|exam(s)?)\b`},
		{"housing", `\b(hous(e|ing)|rent|landlord|tenant|council tax|mortgage)\b`},
		{"travel", `\b(travel|quarantine|abroad|holiday(s)?|flight(s)?)\b`},
		{"certificates", `\b(birth|death|marriage) certificate(s)?\b`},
		{"forms", `\bform(s)?\b`},
		{"guidance", `\b(guidance|information|advice|page(s)?|website|service)\b`},
		{"contact-details", `\b(phone number|email address|helpline|contact detail(s)?)\b`},
		{"deadlines", `\b(deadline(s)?|on time|due date|late)\b`},
	})
}
