package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCoverPageEmptyTextIsFalse(t *testing.T) {
	assert.False(t, IsCoverPage(""))
	assert.False(t, IsCoverPage("   "))
}

func TestIsCoverPageLongTextIsFalse(t *testing.T) {
	assert.False(t, IsCoverPage(strings.Repeat("a", 400)))
}

func TestIsCoverPageDetectsDate(t *testing.T) {
	assert.True(t, IsCoverPage("제출일: 2024년 3월 15일"))
}

func TestIsCoverPageDetectsLegacyID(t *testing.T) {
	assert.True(t, IsCoverPage("학번 20211234"))
}

func TestIsCoverPageDetectsKeyword(t *testing.T) {
	assert.True(t, IsCoverPage("담당 교수: 홍길동"))
	assert.True(t, IsCoverPage("Course: Algorithms, 작성자: 김철수"))
}

func TestIsCoverPagePlainShortTextWithoutSignalsIsFalse(t *testing.T) {
	assert.False(t, IsCoverPage("This is just a short sentence with nothing special."))
}

func TestIsCoverPageGenericIDWithinRange(t *testing.T) {
	assert.True(t, IsCoverPage("ID 123456 attached"))
}
