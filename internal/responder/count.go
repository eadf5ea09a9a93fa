package responder

import (
	"fmt"
	"strings"

	"smokebuddy/internal/types"
)

// ZeroCountText is the reply when nothing has been counted today.
const ZeroCountText = "今天還沒有抽菸喔！\n小灰驕傲地挺起胸膛，\n繼續保持下去吧～ (=^･ω･^=)"

// closingFlourish ends every comparison message for counts above the catalog.
const closingFlourish = "\n小灰默默把菸灰缸推遠了一點……(｡•́︿•̀｡)"

// ComposeCountResponse selects the reply for the record's current count:
// the encouragement text for zero, the verbatim catalog entry for 1..20, and
// a count sentence with a comparison against yesterday above that.
func ComposeCountResponse(rec types.CounterRecord) string {
	switch {
	case rec.Today <= 0:
		return ZeroCountText
	case rec.Today <= len(countCatalog):
		return countCatalog[rec.Today-1]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "今天已經抽了 %d 根菸了，", rec.Today)
	b.WriteString(comparisonClause(rec.Today, rec.Yesterday))
	b.WriteString(closingFlourish)
	return b.String()
}

// comparisonClause states how today compares with yesterday.
func comparisonClause(today, yesterday int) string {
	switch {
	case today < yesterday:
		return fmt.Sprintf("比昨天少了 %d 根。", yesterday-today)
	case today == yesterday:
		return "跟昨天一樣多。"
	default:
		return fmt.Sprintf("已經超過昨天了，現在是 %d 根。", today)
	}
}

// StatusText renders the today/yesterday/streak report.
func StatusText(rec types.CounterRecord) string {
	return fmt.Sprintf("📅 %s\n今天：%d 根\n昨天：%d 根\n連續進步：%d 天", rec.Date, rec.Today, rec.Yesterday, rec.Streak)
}

// YesterdayText renders the yesterday-only report.
func YesterdayText(rec types.CounterRecord) string {
	return fmt.Sprintf("昨天一共抽了 %d 根。", rec.Yesterday)
}

// DaySummaryText is pushed by the end-of-day job.
func DaySummaryText(rec types.CounterRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌙 今日總結（%s）\n今天：%d 根\n昨天：%d 根\n", rec.Date, rec.Today, rec.Yesterday)
	if rec.Streak > 0 {
		fmt.Fprintf(&b, "已經連續 %d 天比前一天少了，小灰好開心！", rec.Streak)
	} else {
		b.WriteString("今天沒有比昨天少，明天再一起努力吧！")
	}
	return b.String()
}
