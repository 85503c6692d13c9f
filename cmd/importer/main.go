package main

import (
	"context"
	"flag"

	"badgereg/internal/database"
	"badgereg/internal/importer"
	"badgereg/internal/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var (
		input       = flag.String("input", "", "path to the raw personnel extract (CSV, ';' separated)")
		staging     = flag.String("staging", "import-staging.csv", "path for the normalized staging file")
		headerLines = flag.Int("header-lines", 1, "number of leading header lines to discard")
		inverted    = flag.Bool("inverted-valid-flag", false, "treat the badge-valid marker with inverted polarity")
		blocked     = flag.Bool("default-blocked", false, "mark imported employees as access-blocked")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *input == "" {
		logger.Fatal("missing -input flag")
	}

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info("no configs/.env file found, using environment")
	}

	db, err := database.Connect(database.ConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	opts := importer.Options{
		HeaderLines:          *headerLines,
		Mapping:              importer.MappingDirect,
		DefaultAccessBlocked: *blocked,
	}
	if *inverted {
		opts.Mapping = importer.MappingInverted
	}

	imp := importer.New(
		repository.NewCompanyRepository(db),
		repository.NewEmployeeRepository(db),
		repository.NewTransactionManager(db),
		logger,
	)

	summary, err := imp.Run(context.Background(), *input, *staging, opts)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	logger.Info("import summary",
		zap.Int("rows_read", summary.RowsRead),
		zap.Int("rows_skipped", summary.RowsSkipped),
		zap.Int("companies_created", summary.CompaniesCreated),
		zap.Int("companies_existing", summary.CompaniesExisting),
		zap.Int("employees_inserted", summary.EmployeesInserted),
		zap.Int("rows_failed", summary.RowsFailed),
		zap.Int("date_fallbacks", summary.DateFallbacks),
	)
}
