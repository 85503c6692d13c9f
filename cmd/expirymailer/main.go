// Command expirymailer generates the expired-authorizations sheet and
// mails it to the expiry recipient list. Meant to run from cron monthly.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"badgereg/internal/database"
	"badgereg/internal/model"
	"badgereg/internal/notify"
	"badgereg/internal/report"
	"badgereg/internal/repository"
	"badgereg/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var (
		outPath = flag.String("out", "", "write the sheet to this file instead of mailing it")
		asOfArg = flag.String("as-of", "", "cutoff date YYYY-MM-DD (default today)")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info("no configs/.env file found, using environment")
	}

	asOf := time.Now()
	if *asOfArg != "" {
		parsed, err := time.Parse("2006-01-02", *asOfArg)
		if err != nil {
			logger.Fatal("invalid -as-of date, expected YYYY-MM-DD", zap.String("value", *asOfArg))
		}
		asOf = parsed
	}

	db, err := database.Connect(database.ConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	ctx := context.Background()
	reports := service.NewReportService(repository.NewEmployeeRepository(db))

	badges, err := reports.ExpiredBadges(ctx, asOf)
	if err != nil {
		logger.Fatal("failed to build expired report", zap.Error(err))
	}
	if len(badges) == 0 {
		logger.Info("no expired authorizations, nothing to send")
		return
	}

	f, err := report.Expired(badges, asOf)
	if err != nil {
		logger.Fatal("failed to render expired sheet", zap.Error(err))
	}
	defer f.Close()

	filename := fmt.Sprintf("scaduti-%s.xlsx", asOf.Format("2006-01-02"))

	if *outPath != "" {
		if err := f.SaveAs(*outPath); err != nil {
			logger.Fatal("failed to write sheet", zap.Error(err))
		}
		logger.Info("sheet written", zap.String("path", *outPath), zap.Int("expired", len(badges)))
		return
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Fatal("failed to serialize sheet", zap.Error(err))
	}

	mailer := notify.NewMailer(mailConfigFromEnv(), repository.NewRecipientRepository(db), logger)
	subject := fmt.Sprintf("Autorizzazioni scadute al %s", asOf.Format("02/01/2006"))
	body := fmt.Sprintf("In allegato l'elenco delle autorizzazioni scadute.\nTotale: %d\n", len(badges))

	if err := mailer.SendReport(ctx, model.RecipientExpiry, subject, body, filename, buf.Bytes()); err != nil {
		logger.Fatal("failed to mail expired report", zap.Error(err))
	}
}

func mailConfigFromEnv() notify.Config {
	port := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			port = n
		}
	}
	return notify.Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}
