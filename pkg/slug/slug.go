package slug

import (
	"regexp"
	"strings"
)

// cyrillicToLatin maps Cyrillic characters to Latin transliteration
var cyrillicToLatin = map[rune]string{
	'а': "a", 'А': "a",
	'б': "b", 'Б': "b",
	'в': "v", 'В': "v",
	'г': "g", 'Г': "g",
	'д': "d", 'Д': "d",
	'е': "e", 'Е': "e",
	'ё': "e", 'Ё': "e",
	'ж': "zh", 'Ж': "zh",
	'з': "z", 'З': "z",
	'и': "i", 'И': "i",
	'й': "y", 'Й': "y",
	'к': "k", 'К': "k",
	'л': "l", 'Л': "l",
	'м': "m", 'М': "m",
	'н': "n", 'Н': "n",
	'о': "o", 'О': "o",
	'п': "p", 'П': "p",
	'р': "r", 'Р': "r",
	'с': "s", 'С': "s",
	'т': "t", 'Т': "t",
	'у': "u", 'У': "u",
	'ф': "f", 'Ф': "f",
	'х': "h", 'Х': "h",
	'ц': "c", 'Ц': "c",
	'ч': "ch", 'Ч': "ch",
	'ш': "sh", 'Ш': "sh",
	'щ': "sh", 'Щ': "sh",
	'ъ': "", 'Ъ': "",
	'ы': "y", 'Ы': "y",
	'ь': "", 'Ь': "",
	'э': "e", 'Э': "e",
	'ю': "iu", 'Ю': "iu",
	'я': "ia", 'Я': "ia",
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9.]+`)
var multipleDashes = regexp.MustCompile(`-+`)

// Transliterate converts Cyrillic text to a Latin approximation.
// Clients upload files named in Russian ("Договор аренды.pdf"); object
// storage keys must stay ASCII.
func Transliterate(s string) string {
	var result strings.Builder
	for _, char := range s {
		if latinChar, exists := cyrillicToLatin[char]; exists {
			result.WriteString(latinChar)
		} else {
			result.WriteRune(char)
		}
	}
	return result.String()
}

// Filename produces a storage-safe slug of an uploaded file name, keeping
// the extension. "Договор аренды.PDF" -> "dogovor-arendy.pdf"
func Filename(name string) string {
	s := strings.ToLower(Transliterate(name))
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		s = "file"
	}
	return s
}
