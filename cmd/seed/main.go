package main

import (
	"complykit/internal/config"
	"complykit/internal/logger"
	"complykit/internal/model"
	"complykit/internal/repository"
	"complykit/internal/risk"
	"context"
	"flag"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// demoAnswers covers one answer set per risk level
var demoAnswers = []model.AnswerSet{
	{
		risk.FieldCompanyName: model.Scalar("Celestial AI Inc."),
		risk.FieldUsesAI:      model.Scalar("Yes"),
		risk.FieldEUReach:     model.Scalar("Yes"),
		risk.FieldPurpose:     model.Scalar("Computes a social credit score for residents"),
		risk.FieldDataTypes:   model.List(risk.DataProfiling),
		risk.FieldUsers:       model.Scalar("Government or public sector"),
	},
	{
		risk.FieldCompanyName:    model.Scalar("GridSense"),
		risk.FieldUsesAI:         model.Scalar("Yes"),
		risk.FieldEUReach:        model.Scalar("Yes"),
		risk.FieldPurpose:        model.Scalar("Predicts load on the electricity grid"),
		risk.FieldUseAreas:       model.List(risk.AreaInfrastructure),
		risk.FieldHumanOversight: model.Scalar(risk.OversightAlways),
		risk.FieldUsers:          model.Scalar(risk.UsersB2B),
	},
	{
		risk.FieldCompanyName:   model.Scalar("HelpDesk Bot"),
		risk.FieldUsesAI:        model.Scalar("Yes"),
		risk.FieldEUReach:       model.Scalar("Yes"),
		risk.FieldPurpose:       model.Scalar("A chatbot answering support questions"),
		risk.FieldUsers:         model.Scalar(risk.UsersB2C),
		risk.FieldAIInteraction: model.Scalar("Yes"),
	},
	{
		risk.FieldCompanyName:    model.Scalar("Ledgerly"),
		risk.FieldUsesAI:         model.Scalar("Yes"),
		risk.FieldEUReach:        model.Scalar("Yes"),
		risk.FieldPurpose:        model.Scalar("Categorises invoices for our finance team"),
		risk.FieldHumanOversight: model.Scalar(risk.OversightAlways),
		risk.FieldUsers:          model.Scalar(risk.UsersInternal),
		risk.FieldAIInteraction:  model.Scalar("No"),
	},
	{
		risk.FieldCompanyName: model.Scalar("Spreadsheet Co"),
		risk.FieldUsesAI:      model.Scalar("No"),
	},
}

func main() {
	userID := flag.String("user", "user_demo", "owner of the seeded results")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Level, "console")
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(ctx)

	repo := repository.NewResultRepo(client.Database(cfg.Mongo.Database))
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}

	// Oldest first, one day apart, so history ordering is visible
	start := time.Now().UTC().Add(-time.Duration(len(demoAnswers)) * 24 * time.Hour)
	for i, answers := range demoAnswers {
		level, rule := risk.Explain(answers)
		result := &model.QuestionnaireResult{
			UserID:    *userID,
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Answers:   answers,
			Score:     risk.Score(answers),
			RiskLevel: level,
		}
		id, err := repo.Create(ctx, result)
		if err != nil {
			log.Fatal("failed to insert result", zap.Int("index", i), zap.Error(err))
		}
		log.Info("seeded result",
			zap.String("id", id),
			zap.String("company", answers.Scalar(risk.FieldCompanyName)),
			zap.String("risk_level", string(level)),
			zap.String("rule", rule),
		)
	}
}
