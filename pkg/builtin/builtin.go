// Package builtin holds the fixed tables shared by the store, the Tier-1
// rule engine, and the embedding provider: the extension→category map and
// the five base category names. It has no dependencies of its own so it
// can sit underneath both pkg/store and pkg/rules without creating an
// import cycle.
package builtin

// ExtensionCategory is the built-in extension→category map from
// tier1_rule.py's _EXT_CATEGORY_MAP. Custom extensions are
// rejected-on-collision against this map at write time; this map always
// wins at read time.
var ExtensionCategory = map[string]string{
	"pdf":  "문서",
	"docx": "문서",
	"doc":  "문서",
	"txt":  "문서",
	"md":   "문서",
	"hwp":  "문서",
	"rtf":  "문서",

	"pptx": "프레젠테이션",
	"ppt":  "프레젠테이션",
	"key":  "프레젠테이션",

	"xlsx": "스프레드시트",
	"xls":  "스프레드시트",
	"csv":  "스프레드시트",

	"json": "데이터",
	"xml":  "데이터",
	"yaml": "데이터",
	"sql":  "데이터",

	"py":   "코드",
	"js":   "코드",
	"ts":   "코드",
	"jsx":  "코드",
	"tsx":  "코드",
	"java": "코드",
	"cpp":  "코드",
	"c":    "코드",
	"h":    "코드",
	"go":   "코드",
	"rs":   "코드",
	"html": "코드",
	"css":  "코드",

	"jpg":  "이미지",
	"jpeg": "이미지",
	"png":  "이미지",
	"gif":  "이미지",
	"svg":  "이미지",
	"webp": "이미지",
	"bmp":  "이미지",

	"mp4":  "영상",
	"mov":  "영상",
	"avi":  "영상",
	"mkv":  "영상",
	"webm": "영상",

	"mp3":  "오디오",
	"wav":  "오디오",
	"flac": "오디오",
	"aac":  "오디오",
	"ogg":  "오디오",

	"zip": "압축",
	"tar": "압축",
	"gz":  "압축",
	"rar": "압축",
	"7z":  "압축",
}

// BaseCategories are the five categories enumerated by both the embedding
// prototype table and the Tier-3 LLM system prompt.
var BaseCategories = []string{"문서", "프레젠테이션", "스프레드시트", "코드", "데이터"}

// NonTextExtensions are extensions the classification pipeline treats as
// having no usable textual content (§4.5 step 2), dotless and lower-case.
var NonTextExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "svg": true, "webp": true, "bmp": true,
	"mp4": true, "mov": true, "avi": true, "mkv": true, "webm": true,
	"mp3": true, "wav": true, "flac": true, "aac": true, "ogg": true,
	"zip": true, "tar": true, "gz": true, "rar": true, "7z": true,
}

// TextExtractable are the extensions the scan orchestrator's body
// extraction stage (§4.6 stage 4) runs ExtractText against.
var TextExtractable = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".txt": true, ".md": true,
}

// IsBuiltinExtension reports whether ext (dotless, lower-case) has a
// built-in category mapping.
func IsBuiltinExtension(ext string) bool {
	_, ok := ExtensionCategory[ext]
	return ok
}
