package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lexatlas/regscan/internal/model"
)

const (
	// headerWindow is how much leading text the header-date heuristic
	// inspects.
	headerWindow = 2000
	// lawHeaderLen is how much of the first chunk is retained as the
	// same-document disambiguation snippet for probe prompts.
	lawHeaderLen = 1000
	// evidenceLen bounds the evidence snippet retained with an accepted
	// date.
	evidenceLen = 2000
	// minYear is the oldest plausible enactment year.
	minYear = 1950
)

var months = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

// headerDateRe matches the enacting header of EU-style instruments,
// e.g. "REGULATION (EU) 2021/123 OF THE EUROPEAN PARLIAMENT ... of 2
// March 2021".
var headerDateRe = regexp.MustCompile(
	`(?is)(DIRECTIVE|REGULATION|DECISION)[^\n]{0,300}?\bOF\b\s+(\d{1,2}\s+[A-Za-z]+\s+\d{4})`,
)

var (
	isoDateRe  = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2})?)?$`)
	longDateRe = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})$`)
)

func yearPlausible(y int) bool {
	return y >= minYear && y <= time.Now().UTC().Year()+1
}

// ToISODate normalizes a date string to ISO form. Accepted inputs are
// already-ISO prefixes (YYYY, YYYY-MM, YYYY-MM-DD) and long-form "2
// March 2021" dates. Anything else, and any year outside the plausible
// enactment range, yields "".
func ToISODate(s string) string {
	s = strings.TrimSpace(s)
	if isoDateRe.MatchString(s) {
		var y int
		if _, err := fmt.Sscanf(s[:4], "%d", &y); err != nil || !yearPlausible(y) {
			return ""
		}
		return s
	}
	if m := longDateRe.FindStringSubmatch(s); m != nil {
		var d, y int
		fmt.Sscanf(m[1], "%d", &d)
		fmt.Sscanf(m[3], "%d", &y)
		mon := months[strings.ToLower(m[2])]
		if mon > 0 && d >= 1 && d <= 31 && yearPlausible(y) {
			return fmt.Sprintf("%04d-%02d-%02d", y, mon, d)
		}
	}
	return ""
}

// HeaderDate extracts an enactment date from the document's leading
// text window, or "" when the structural header pattern does not match.
func HeaderDate(text string) string {
	head := text
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	head = strings.NewReplacer(" ", " ", " ", " ").Replace(head)
	m := headerDateRe.FindStringSubmatch(head)
	if m == nil {
		return ""
	}
	return ToISODate(m[2])
}

// NewDateInfo initializes date tracking for a document. A header match
// locks the date immediately at full specificity, disabling all chunk
// probes for this document.
func NewDateInfo(text string) model.DateInfo {
	info := model.DateInfo{}
	if hd := HeaderDate(text); hd != "" {
		info.Date = hd
		info.Specificity = model.SpecificityFullDate
		info.EvidenceChunk = clip(text, evidenceLen)
		info.Locked = true
	}
	return info
}

// ApplyCandidate merges an accepted probe candidate into info under the
// longer-wins rule: a candidate is applied only when no date is held
// yet or when its ISO string is strictly longer (strictly more
// specific). Applying locks the date, which stops probing in workers
// dispatched afterward; in-flight workers holding stale snapshots may
// still submit candidates, and those obey the same rule, so the date
// can only ever gain specificity. Must be called from the
// orchestrator's merge loop only. Reports whether the candidate was
// applied.
func ApplyCandidate(info *model.DateInfo, cand model.DateCandidate) bool {
	if cand.Date == "" {
		return false
	}
	if info.Date != "" && len(cand.Date) <= len(info.Date) {
		return false
	}
	info.Date = cand.Date
	info.Specificity = cand.Specificity
	info.EvidenceChunk = clip(cand.Evidence, evidenceLen)
	info.Locked = true
	return true
}

// clip truncates s to at most n bytes without splitting a rune, so the
// snippet stays valid UTF-8 when embedded in later prompts.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
