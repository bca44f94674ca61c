// Package consumer
package consumer

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/moneytag/moneytag/internal/service"
)

const (
	start  = "start"
	help   = "help"
	report = "report"
)

const usageMessage = "Send a record as \"<title> <amount> [tags]\", for example\n\n" +
	"Coffee 3.5 food, out\n\n" +
	"Tags are separated by spaces, commas or semicolons. Send /report to get the totals by tag."

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram records the messages it receives for one owner and answers /report with a tag summary
type Telegram struct {
	bot         sender
	updatesChan tgbotapi.UpdatesChannel
	owner       string
	recorder    *service.Recorder
	reporter    *service.Reporter
}

func NewTelegram(bot sender, updatesChan tgbotapi.UpdatesChannel, owner string, recorder *service.Recorder,
	reporter *service.Reporter) *Telegram {
	return &Telegram{
		bot:         bot,
		updatesChan: updatesChan,
		owner:       owner,
		recorder:    recorder,
		reporter:    reporter,
	}
}

func (t *Telegram) Consume(ctx context.Context) {
	logrus.Info("telegram consumer started")
	for {
		select {
		case <-ctx.Done():
			logrus.Infof("telegram consumer stopped: %v", ctx.Err())
			return
		case update, ok := <-t.updatesChan:
			if !ok {
				logrus.Info("telegram consumer stopped: updates channel closed")
				return
			}
			if update.Message == nil {
				continue
			}
			logrus.Infof("received message in telegram consumer from chat %d", update.Message.Chat.ID)

			newCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			reply := t.handle(newCtx, update.Message)
			cancel()

			if err := t.sendMessage(update.Message, reply); err != nil {
				logrus.Errorf("telegram consumer send message error: %v", err)
			}
		}
	}
}

func (t *Telegram) handle(ctx context.Context, message *tgbotapi.Message) string {
	if message.IsCommand() {
		switch message.Command() {
		case start, help:
			return usageMessage
		case report:
			summary, err := t.reporter.Summary(ctx, t.owner)
			if err != nil {
				logrus.Errorf("telegram consumer couldn't get summary: %v", err)
				return fmt.Sprintf("Couldn't build the report: %v", err)
			}
			return convertToReport(summary)
		default:
			logrus.Infof("unknown command: %s", message.Text)
			return usageMessage
		}
	}

	args := strings.SplitN(message.Text, " ", 3)
	if len(args) < 2 {
		logrus.Errorf("telegram consumer received invalid message: %s", message.Text)
		return usageMessage
	}
	var tag string
	if len(args) == 3 {
		tag = args[2]
	}

	record, err := service.Decode(t.owner, args[0], args[1], tag)
	if err != nil {
		logrus.Errorf("telegram consumer couldn't decode message: %v", err)
		return fmt.Sprintf("The second word must be a number. %s", usageMessage)
	}
	if err = t.recorder.Add(ctx, record); err != nil {
		logrus.Errorf("telegram consumer couldn't Add: %v", err)
		return fmt.Sprintf("Couldn't save the record: %v", err)
	}

	logrus.Infof("%s added record %s: %.2f %v", t.owner, record.Title, record.Amount, record.Tags)
	return fmt.Sprintf("Added %s: %.2f %s", record.Title, record.Amount, strings.Join(record.Tags, ", "))
}

func (t *Telegram) sendMessage(message *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID

	_, err := t.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("sendMessage, telegram bot couldn't send message: %v", err)
	}
	return nil
}

func convertToReport(summary *service.Summary) string {
	report := fmt.Sprintf("Records - %d\n", summary.Count)
	for _, tag := range summary.Tags {
		report += fmt.Sprintf("%s - %s\n", tag.Tag, tag.Amount.StringFixed(2))
	}
	if summary.Skipped > 0 {
		report += fmt.Sprintf("Skipped, invalid amount - %d\n", summary.Skipped)
	}
	return fmt.Sprintf("%s\nTotal - %s", report, summary.Total.StringFixed(2))
}
