package extract

import (
	"regexp"
	"strings"
)

// CoverTextMaxLen is the length threshold below which a page is eligible
// to be considered a cover page; anything at or above it is treated as
// regular body content (§4.1).
const CoverTextMaxLen = 300

var (
	datePattern      = regexp.MustCompile(`\d{4}[-./년]\s*\d{1,2}[-./월]?\s*\d{0,2}일?`)
	legacyIDPattern  = regexp.MustCompile(`\b20\d{6,8}\b`)
	genericIDPattern = regexp.MustCompile(`(?:^|\D)(\d{6,10})(?:\D|$)`)
)

// coverKeywords is the fixed Korean/English set of words a cover page
// tends to carry (student/staff IDs, department, submission metadata).
var coverKeywords = []string{
	"학번", "사번", "학과", "학부", "소속", "담당 교수", "지도 교수",
	"제출일", "제출자", "작성자", "작성일", "부서", "직책", "성명", "교과목", "과목명",
}

// IsCoverPage reports whether text looks like a title/cover page: short,
// and carrying a date, an ID-shaped number, or one of the fixed keywords.
func IsCoverPage(text string) bool {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return false
	}
	if len([]rune(stripped)) >= CoverTextMaxLen {
		return false
	}
	if datePattern.MatchString(stripped) || legacyIDPattern.MatchString(stripped) || genericIDPattern.MatchString(stripped) {
		return true
	}
	for _, kw := range coverKeywords {
		if strings.Contains(stripped, kw) {
			return true
		}
	}
	return false
}
