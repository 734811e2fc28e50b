package admissions

import "strings"

// CategoryOther is the category assigned when a principal diagnosis code is
// absent or maps to no known ICD-10 chapter.
const CategoryOther = "Other"

// icdChapterByLetter maps the leading letter of an ICD-10-AM 3-character
// principal diagnosis code to its chapter label.
var icdChapterByLetter = map[byte]string{
	'A': "A–B: Infectious",
	'B': "A–B: Infectious",
	'C': "C–D: Neoplasms",
	'D': "C–D: Neoplasms",
	'E': "E: Endocrine & metabolic",
	'F': "F: Mental & behavioural",
	'G': "G: Nervous system",
	'H': "H: Eye & ear",
	'I': "I: Circulatory system",
	'J': "J: Respiratory system",
	'K': "K: Digestive system",
	'L': "L: Skin",
	'M': "M: Musculoskeletal",
	'N': "N: Genitourinary system",
	'O': "O: Pregnancy & childbirth",
	'P': "P: Perinatal conditions",
	'Q': "Q: Congenital anomalies",
	'R': "R: Symptoms & signs",
	'S': "S–T: Injury & poisoning",
	'T': "S–T: Injury & poisoning",
	'U': "U: Special purposes",
	'V': "V–Y: External causes",
	'W': "V–Y: External causes",
	'X': "V–Y: External causes",
	'Y': "V–Y: External causes",
	'Z': "Z: Factors influencing health status",
}

// ChapterFor derives the ICD-10 chapter category from a principal diagnosis
// code. Unknown or empty codes fall back to CategoryOther.
func ChapterFor(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return CategoryOther
	}
	if chapter, ok := icdChapterByLetter[code[0]]; ok {
		return chapter
	}
	return CategoryOther
}
