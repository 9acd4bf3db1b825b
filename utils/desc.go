package utils

import "encoding/json"

// LocalizedDesc picks a task description out of the stored JSON blob, which
// maps language codes to text. Fallback order: requested language, then "en",
// then a literal placeholder. A malformed blob is treated as a plain English
// description instead of failing the request.
func LocalizedDesc(descJSON, lang string) string {
	desc := map[string]string{}
	if err := json.Unmarshal([]byte(descJSON), &desc); err != nil {
		if descJSON != "" {
			desc = map[string]string{"en": descJSON}
		}
	}
	if v, ok := desc[lang]; ok && v != "" {
		return v
	}
	if v, ok := desc["en"]; ok && v != "" {
		return v
	}
	return "Task"
}
