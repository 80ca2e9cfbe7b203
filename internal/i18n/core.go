package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/amoylab/ifood-dashboard/internal/common/cnst"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var translationsFS embed.FS

var (
	mu          sync.RWMutex
	translator  *I18n
	defaultLang = cnst.LangDefault
)

// SetDefaultLanguage sets the language used when a request does not ask for one
func SetDefaultLanguage(lang string) {
	mu.Lock()
	defer mu.Unlock()
	if code, ok := supported(lang); ok {
		defaultLang = code
	}
}

// DefaultLanguage returns the configured fallback language
func DefaultLanguage() string {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLang
}

// InitTranslator builds the global translator from the embedded message
// files, then applies the files found in overrideDir when it is set.
func InitTranslator(overrideDir string) error {
	t := NewI18n(language.English)
	if err := t.LoadEmbedded(); err != nil {
		return err
	}
	if overrideDir != "" {
		if err := t.LoadTranslations(overrideDir); err != nil {
			return err
		}
	}

	mu.Lock()
	translator = t
	mu.Unlock()
	return nil
}

// GetTranslator returns the global translator, loading the embedded messages on first use
func GetTranslator() *I18n {
	mu.RLock()
	t := translator
	mu.RUnlock()
	if t != nil {
		return t
	}
	_ = InitTranslator("")

	mu.RLock()
	defer mu.RUnlock()
	return translator
}

// I18n manages internationalization and translations
type I18n struct {
	bundle      *i18n.Bundle
	defaultLang language.Tag
}

// NewI18n creates a new I18n instance with the specified default language
func NewI18n(defaultLang language.Tag) *I18n {
	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	return &I18n{
		bundle:      bundle,
		defaultLang: defaultLang,
	}
}

// LoadEmbedded loads the message files compiled into the binary
func (i *I18n) LoadEmbedded() error {
	files, err := fs.Glob(translationsFS, "translations/*.toml")
	if err != nil {
		return err
	}
	for _, file := range files {
		if _, err := i.bundle.LoadMessageFileFS(translationsFS, file); err != nil {
			return fmt.Errorf("failed to load embedded translations %s: %w", file, err)
		}
	}
	return nil
}

// LoadTranslations loads translation files from the specified directory
func (i *I18n) LoadTranslations(translationsDir string) error {
	files, err := os.ReadDir(translationsDir)
	if err != nil {
		return fmt.Errorf("failed to read translations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}
		if _, err := i.bundle.LoadMessageFile(filepath.Join(translationsDir, file.Name())); err != nil {
			return fmt.Errorf("failed to load translations %s: %w", file.Name(), err)
		}
	}

	return nil
}

// Translate returns a localized string for the given message ID and language.
// defaultMessage is rendered when no file defines msgID.
func (i *I18n) Translate(msgID, defaultMessage, lang string, templateData map[string]any) string {
	localizer := i18n.NewLocalizer(i.bundle, lang, i.defaultLang.String())

	lc := &i18n.LocalizeConfig{
		MessageID: msgID,
	}
	if defaultMessage != "" {
		lc.DefaultMessage = &i18n.Message{ID: msgID, Other: defaultMessage}
	}
	if len(templateData) > 0 {
		lc.TemplateData = templateData
	}

	msg, err := localizer.Localize(lc)
	if err != nil || msg == "" {
		if defaultMessage != "" {
			return renderDefault(defaultMessage, templateData)
		}
		return msgID
	}
	return msg
}

// LanguageFromRequest picks the response language from X-Lang, then Accept-Language
func LanguageFromRequest(r *http.Request) string {
	if lang := r.Header.Get(cnst.XLang); lang != "" {
		return NormalizeLang(lang)
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil {
			for _, tag := range tags {
				base, _ := tag.Base()
				if code, ok := supported(base.String()); ok {
					return code
				}
			}
		}
	}

	return DefaultLanguage()
}

// NormalizeLang maps a language tag such as "pt-BR" to a supported code
func NormalizeLang(lang string) string {
	if code, ok := supported(lang); ok {
		return code
	}
	return DefaultLanguage()
}

func supported(lang string) (string, bool) {
	code := strings.ToLower(strings.TrimSpace(strings.SplitN(strings.ReplaceAll(lang, "_", "-"), "-", 2)[0]))
	for _, s := range cnst.SupportedLangs {
		if code == s {
			return code, true
		}
	}
	return "", false
}

// ContextLanguage returns the language stored on the gin context
func ContextLanguage(c *gin.Context) string {
	if c != nil {
		if lang := c.GetString(cnst.XLang); lang != "" {
			return lang
		}
	}
	return DefaultLanguage()
}

// TranslateMessage translates a message ID using the context's language preference
func TranslateMessage(c *gin.Context, msgID string, data map[string]any) string {
	return GetTranslator().Translate(msgID, "", ContextLanguage(c), data)
}
