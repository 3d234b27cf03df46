package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Superior-Josh/fish-time-pro/internal/payroll"
	"github.com/Superior-Josh/fish-time-pro/internal/workday"
	"github.com/Superior-Josh/fish-time-pro/pkg/dateutil"
)

// Hint is the first tooltip line
const Hint = "Fish Time Pro: today's pay, second by second"

var statusTexts = map[payroll.Status]string{
	payroll.StatusBeforeWork:        "Not started yet",
	payroll.StatusMorningWorking:    "Working (morning)",
	payroll.StatusLunchBreak:        "Lunch break",
	payroll.StatusAfternoonWorking:  "Working (afternoon)",
	payroll.StatusOffWork:           "Off work",
	payroll.StatusHolidayPaid:       "Paid holiday",
	payroll.StatusRestDay:           "Rest day",
	payroll.StatusZeroWorkingDays:   "No working days this month",
	payroll.StatusNoSalary:          "Monthly salary not configured",
	payroll.StatusInvalidTimeConfig: "Work hours are not configured correctly",
}

// StatusText returns the human text for a status
func StatusText(status payroll.Status) string {
	if text, ok := statusTexts[status]; ok {
		return text
	}
	return string(status)
}

// View is what a presentation surface shows
type View struct {
	Title   string
	Tooltip []string
}

// TooltipText joins the tooltip lines
func (v View) TooltipText() string {
	return strings.Join(v.Tooltip, "\n")
}

// Presenter formats pay progress for display
type Presenter struct {
	symbol  string
	printer *message.Printer
}

// NewPresenter creates a Presenter. An unknown locale formats without locale data.
func NewPresenter(symbol, locale string) *Presenter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}

	return &Presenter{
		symbol:  symbol,
		printer: message.NewPrinter(tag),
	}
}

// Amount rounds half away from zero to two decimals and groups digits per locale
func (p *Presenter) Amount(amount float64) string {
	rounded := decimal.NewFromFloat(amount).Round(2).InexactFloat64()
	return p.printer.Sprint(number.Decimal(rounded, number.Scale(2)))
}

// Money returns the amount prefixed with the currency symbol
func (p *Presenter) Money(amount float64) string {
	return p.symbol + " " + p.Amount(amount)
}

// Percent formats a ratio in [0,1] as a percentage with two decimals
func Percent(ratio float64) string {
	return decimal.NewFromFloat(ratio*100).StringFixed(2) + "%"
}

// Title returns the short status text
func (p *Presenter) Title(st payroll.PayState) string {
	return p.Money(st.EarnedToday) + "  |  " + Percent(st.RatioToday)
}

// Render builds the title and tooltip for the pay state computed from snap at now
func (p *Presenter) Render(snap payroll.Snapshot, st payroll.PayState, now time.Time) View {
	lines := []string{Hint, "Status: " + StatusText(st.Status)}

	if st.Status == payroll.StatusHolidayPaid {
		lines = append(lines, "Public holiday: today's pay is already counted")
	} else {
		b := snap.Bounds()
		lines = append(lines,
			"Until lunch: "+dateutil.FormatCountdown(b.MorningEnd.Sub(now)),
			"Until off work: "+dateutil.FormatCountdown(b.AfternoonEnd.Sub(now)),
		)
	}

	lines = append(lines,
		fmt.Sprintf("Days worked: %d / %d", snap.Aggregate.WorkedDaysSoFar, snap.Aggregate.TotalWorkingDays),
		"Month to date: "+p.Money(st.MonthlyToDate),
		"Next rest day: "+NextRestDayText(snap.NextRestDay, snap.Aggregate),
	)

	if snap.CalendarStatus != "" {
		lines = append(lines, snap.CalendarStatus)
	}

	return View{Title: p.Title(st), Tooltip: lines}
}

// NextRestDayText describes the distance returned by the rest-day forecaster.
// Zero means either today is a rest day or none was found in the horizon.
func NextRestDayText(days int, agg workday.Aggregate) string {
	switch {
	case days == 0 && (agg.IsTodayHoliday || !agg.IsTodayWorkingDay):
		return "today"
	case days == 0:
		return fmt.Sprintf("not within %d days", workday.ForecastHorizon)
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
