package reporter

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/mnaScraper/internal/pipeline"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Reporter sends short run notifications to a Telegram admin chat.
// It is nil-safe: if adminID is 0 or the receiver is nil, every method is a no-op.
type Reporter struct {
	bot     Sender
	adminID int64
}

func New(bot Sender, adminID int64) *Reporter {
	return &Reporter{bot: bot, adminID: adminID}
}

// FromToken returns nil when no bot token or admin chat is configured.
func FromToken(token string, adminID int64) (*Reporter, error) {
	if token == "" || adminID == 0 {
		return nil, nil
	}
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	return New(botAPI, adminID), nil
}

func (r *Reporter) Notify(msg string) {
	if r == nil || r.adminID == 0 || r.bot == nil {
		return
	}
	if _, err := r.bot.Send(tgbotapi.NewMessage(r.adminID, msg)); err != nil {
		slog.Error("failed to send notification", "err", err)
	}
}

func (r *Reporter) Finished(site string, report pipeline.Report) {
	r.Notify(FinishedMessage(site, report))
}

func (r *Reporter) Failed(site string, err error) {
	r.Notify(fmt.Sprintf("❌ %s: scrape failed: %v", site, err))
}

func FinishedMessage(site string, report pipeline.Report) string {
	msg := fmt.Sprintf("✅ %s: %d pages, %d candidates, %d kept, %d inserted",
		site, report.Pages, report.Candidates, report.Kept, report.Inserted)
	if report.Halted {
		msg += " (stopped at already ingested articles)"
	}
	return msg
}
