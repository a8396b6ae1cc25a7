package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const TimeLayout = "2006-01-02 15:04:05"

// FormatPriceCard - карточка цены (HTML для Telegram)
func FormatPriceCard(q PriceQuote) string {
	currency := q.Currency
	if currency == "" {
		currency = Currency
	}

	var sb strings.Builder
	sb.WriteString("💰 <b>Текущая цена PLEX</b>\n")
	sb.WriteString(fmt.Sprintf("┣ Цена: %s %s\n", FormatAmount(q.Price), currency))
	sb.WriteString(fmt.Sprintf("┣ Локация: %s\n", q.Location))
	sb.WriteString(fmt.Sprintf("┗ Обновлено: %s", q.CapturedAt.Format(TimeLayout)))
	return sb.String()
}

func FormatFetchWarning(err error, at time.Time) string {
	return fmt.Sprintf("⚠️ [%s] Не удалось получить цену PLEX: %s", at.Format(TimeLayout), Describe(err))
}

func FormatIntervalChanged(d time.Duration) string {
	return "🛠 " + IntervalChangedText(d)
}

func IntervalChangedText(d time.Duration) string {
	return fmt.Sprintf("Интервал обновления изменён на %d секунд", int64(d/time.Second))
}

func FormatStartup() string {
	return "🚀 Мониторинг PLEX запущен!\nИспользуйте /price для текущей цены"
}

func FormatCommandError(err error) string {
	return "❌ Не удалось получить текущую цену: " + Describe(err)
}

// FormatAmount печатает сумму с двумя знаками и разделителями тысяч: 1,234,567.89
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, _ := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}

	return sign + sb.String() + "." + frac
}
