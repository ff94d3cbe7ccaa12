package locale

import "fmt"

// Fixed reply strings, mirrored across both locales. Everything the
// assistant can say without the oracle's help lives here.

func ErrorMessage(l Locale, detail string) string {
	if l == Turkish {
		return fmt.Sprintf("❌ Hata: %s", detail)
	}
	return fmt.Sprintf("❌ Error: %s", detail)
}

func QueryNotGeneratedMessage(l Locale) string {
	if l == Turkish {
		return "❌ Hata: SQL sorgusu oluşturulamadı."
	}
	return "❌ Error: SQL query could not be generated."
}

func NoDataMessage(l Locale, explanation string) string {
	if l == Turkish {
		return fmt.Sprintf("🔍 %s\n📌 Ancak, sorguya uygun bir veri bulunamadı.", explanation)
	}
	return fmt.Sprintf("🔍 %s\n📌 However, no relevant data was found.", explanation)
}

func ReplyNotGeneratedMessage(l Locale) string {
	if l == Turkish {
		return "❌ Açıklama üretilemedi."
	}
	return "❌ Explanation could not be generated."
}

func ReplyFailedMessage(l Locale, detail string) string {
	if l == Turkish {
		return fmt.Sprintf("❌ Açıklama oluşturulamadı: %s", detail)
	}
	return fmt.Sprintf("❌ Explanation could not be generated: %s", detail)
}
