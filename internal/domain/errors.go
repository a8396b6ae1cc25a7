package domain

import "errors"

var (
	ErrUpstreamUnavailable = errors.New("price source unavailable")
	ErrNoLiquidity         = errors.New("no sell orders")
	ErrEnrichmentFailure   = errors.New("location lookup failed")
	ErrInvalidInterval     = errors.New("interval below minimum")
	ErrBadRequest          = errors.New("bad request")
	ErrNotifierDisabled    = errors.New("notifier is not configured")
	ErrNotifierSendFailure = errors.New("notification send failed")
	ErrInternal            = errors.New("internal error")
)

// Describe возвращает понятную пользователю причину ошибки.
// Сырые тексты ошибок наружу не уходят.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoLiquidity):
		return "нет ордеров на продажу PLEX"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "рынок EVE ESI недоступен"
	case errors.Is(err, ErrInvalidInterval):
		return "слишком частые запросы, минимальный интервал: 5 минут"
	case errors.Is(err, ErrBadRequest):
		return "некорректный запрос"
	default:
		return "внутренняя ошибка"
	}
}
