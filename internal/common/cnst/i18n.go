package cnst

const (
	LangEN      = "en"
	LangPT      = "pt"
	LangDefault = LangEN

	// XLang is both the request header and the gin context key holding the response language
	XLang = "X-Lang"
)

// SupportedLangs lists the languages with a translation file
var SupportedLangs = []string{LangEN, LangPT}
