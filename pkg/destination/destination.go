// Package destination resolves the folder path a classified file should
// move to, by matching the configured rule tree and falling back to the
// file's category.
package destination

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/KimHands/clasp/pkg/store"
)

// FallbackFolder is used when neither a rule nor a category is
// available to name a destination folder.
const FallbackFolder = "기타"

var invalidPathChars = regexp.MustCompile(`[/\\:*?"<>|\x00]|\.\.`)

// sanitizeComponent strips characters that can't appear in a path
// segment, trims trailing dots/spaces (illegal trailing characters on
// Windows), and substitutes the fallback folder name if nothing is left.
func sanitizeComponent(s string) string {
	cleaned := invalidPathChars.ReplaceAllString(s, "_")
	cleaned = strings.TrimRight(cleaned, " .")
	if cleaned == "" {
		return FallbackFolder
	}
	return cleaned
}

// Resolve computes the destination path (folder + filename) for one
// file, given its winning classification, the scan's base directory,
// and the full rule set (§4.8).
func Resolve(file store.File, cls store.Classification, hasCls bool, baseDir string, rules []store.Rule) string {
	byID := make(map[int64]store.Rule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}

	sorted := append([]store.Rule(nil), rules...)
	sortByPriority(sorted)

	var best *store.Rule
	for i := range sorted {
		r := sorted[i]
		if !ruleMatches(r, file, cls, hasCls) {
			continue
		}
		switch {
		case best == nil:
			b := r
			best = &b
		case isDescendant(byID, r.ID, best.ID):
			b := r
			best = &b
		}
	}

	var parts []string
	if best != nil {
		parts = folderChain(byID, *best)
	} else if hasCls && cls.Category != "" {
		parts = []string{sanitizeComponent(cls.Category)}
	} else {
		parts = []string{FallbackFolder}
	}

	dir := baseDir
	for _, p := range parts {
		dir = filepath.Join(dir, p)
	}
	dest := filepath.Join(dir, sanitizeFilename(file))

	cleanBase := filepath.Clean(baseDir)
	if !withinBase(dest, cleanBase) {
		dest = filepath.Join(cleanBase, FallbackFolder, sanitizeFilename(file))
	}
	return dest
}

// withinBase reports whether dest lies at or under base after both are
// cleaned — the containment check guarding against a sanitized component
// that still manages to escape (e.g. a rule chain resolving to "..").
func withinBase(dest, base string) bool {
	dest = filepath.Clean(dest)
	if dest == base {
		return true
	}
	return strings.HasPrefix(dest, base+string(filepath.Separator))
}

// sanitizeFilename rejects an empty or dot-leading filename, substituting
// a fallback name keyed by the file's id so collisions across files don't
// collapse to the same fallback.
func sanitizeFilename(file store.File) string {
	name := strings.TrimSpace(file.Filename)
	if name == "" || strings.HasPrefix(name, ".") {
		return "unnamed_" + strconv.FormatInt(file.ID, 10) + file.Extension
	}
	return name
}

func ruleMatches(r store.Rule, file store.File, cls store.Classification, hasCls bool) bool {
	value := strings.ToLower(r.Value)
	switch r.Type {
	case store.RuleTypeDate:
		if file.ModifiedAt.IsZero() {
			return false
		}
		return strconv.Itoa(file.ModifiedAt.Year()) == r.Value
	case store.RuleTypeExtension:
		ext := strings.ToLower(strings.TrimPrefix(file.Extension, "."))
		return ext != "" && ext == value
	case store.RuleTypeContent:
		if strings.Contains(strings.ToLower(file.ExtractedTextSummary), value) {
			return true
		}
		if strings.Contains(strings.ToLower(file.Filename), value) {
			return true
		}
		return hasCls && strings.Contains(strings.ToLower(cls.Category), value)
	default:
		return false
	}
}

// isDescendant reports whether candidateID is reachable from
// ancestorID's children by walking down — concretely, whether following
// candidate's parent chain reaches ancestorID without revisiting a node
// (guards against a cyclic rule tree slipping past store-layer checks).
func isDescendant(byID map[int64]store.Rule, candidateID, ancestorID int64) bool {
	visited := map[int64]bool{}
	current := candidateID
	for {
		r, ok := byID[current]
		if !ok || r.ParentID == 0 {
			return false
		}
		if visited[current] {
			return false
		}
		visited[current] = true
		if r.ParentID == ancestorID {
			return true
		}
		current = r.ParentID
	}
}

// folderChain walks from rule to its root ancestor and returns the
// sanitized folder name chain in root-to-leaf order.
func folderChain(byID map[int64]store.Rule, rule store.Rule) []string {
	var chain []string
	visited := map[int64]bool{}
	current := rule
	for {
		chain = append(chain, sanitizeComponent(current.FolderName))
		if visited[current.ID] || current.ParentID == 0 {
			break
		}
		visited[current.ID] = true
		parent, ok := byID[current.ParentID]
		if !ok {
			break
		}
		current = parent
	}
	reverse(chain)
	return chain
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func sortByPriority(rules []store.Rule) {
	for i := 1; i < len(rules); i++ {
		for j := i; j > 0 && rules[j-1].Priority > rules[j].Priority; j-- {
			rules[j-1], rules[j] = rules[j], rules[j-1]
		}
	}
}
