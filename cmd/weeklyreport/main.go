// Command weeklyreport generates the authorized-personnel sheet and mails
// it to the weekly recipient list. Meant to run from cron every Monday.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

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
	outPath := flag.String("out", "", "write the sheet to this file instead of mailing it")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info("no configs/.env file found, using environment")
	}

	db, err := database.Connect(database.ConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	ctx := context.Background()
	reports := service.NewReportService(repository.NewEmployeeRepository(db))

	data, err := reports.WeeklyReport(ctx)
	if err != nil {
		logger.Fatal("failed to build weekly report", zap.Error(err))
	}

	f, err := report.Weekly(data)
	if err != nil {
		logger.Fatal("failed to render weekly sheet", zap.Error(err))
	}
	defer f.Close()

	filename := fmt.Sprintf("autorizzati-%s.xlsx", data.GeneratedAt.Format("2006-01-02"))

	if *outPath != "" {
		if err := f.SaveAs(*outPath); err != nil {
			logger.Fatal("failed to write sheet", zap.Error(err))
		}
		logger.Info("sheet written", zap.String("path", *outPath),
			zap.Int("companies", data.CompanyCount), zap.Int("employees", data.EmployeeCount))
		return
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Fatal("failed to serialize sheet", zap.Error(err))
	}

	mailer := notify.NewMailer(mailConfigFromEnv(), repository.NewRecipientRepository(db), logger)
	subject := fmt.Sprintf("Lista personale autorizzato - %s", data.GeneratedAt.Format("02/01/2006"))
	body := fmt.Sprintf("In allegato la lista settimanale del personale autorizzato.\nDitte: %d\nDipendenti: %d\n",
		data.CompanyCount, data.EmployeeCount)

	if err := mailer.SendReport(ctx, model.RecipientWeekly, subject, body, filename, buf.Bytes()); err != nil {
		logger.Fatal("failed to mail weekly report", zap.Error(err))
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
