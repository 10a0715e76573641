// Package language stores each user's interface language and negotiates a
// fallback from the Accept-Language header.
package language

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
	"github.com/gdpillet/gdpillet-trailmates/internal/kv"
)

const (
	StorageKey = "trailmates-language"
	Default    = "en"
)

// Supported is in preference order; the first entry is the default.
var Supported = []string{"en", "fr", "it", "es"}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.French,
	language.Italian,
	language.Spanish,
})

type Service struct {
	store kv.Store
	log   *zap.Logger
}

func NewService(store kv.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

func IsSupported(code string) bool {
	for _, s := range Supported {
		if s == code {
			return true
		}
	}
	return false
}

// Resolve picks the stored preference, then the best Accept-Language match,
// then English. Storage failures degrade to the header.
func (s *Service) Resolve(ctx context.Context, userID, acceptLanguage string) string {
	if userID != "" {
		stored, found, err := s.store.Get(ctx, kv.Key(StorageKey, userID))
		switch {
		case err != nil:
			s.log.Warn("read language preference", zap.String("user_id", userID), zap.Error(err))
		case found && IsSupported(stored):
			return stored
		}
	}
	return Negotiate(acceptLanguage)
}

// Negotiate maps an Accept-Language header onto a supported code.
func Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

func (s *Service) Set(ctx context.Context, userID, code string) error {
	if !IsSupported(code) {
		return apperror.Validation("unsupported language " + code)
	}
	return s.store.Set(ctx, kv.Key(StorageKey, userID), code)
}
