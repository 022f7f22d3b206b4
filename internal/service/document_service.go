package service

import (
	"bytes"
	"complykit/internal/model"
	"complykit/internal/repository"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

const (
	DocumentFailedText = "Error generating document."
	DocumentEmptyText  = "No response."
)

var documentPrompts = map[model.DocumentKind]string{
	model.DocumentTransparency: "You are an expert in AI compliance. Generate a clear, user-friendly Transparency Notice for an AI system, based on the following context: %s. " +
		"The notice should explain what the system does, what data it uses, and how it impacts users, in plain language.",
	model.DocumentDatasheet: "You are an expert in AI compliance. Generate a Data Sheet for an AI system, based on the following context: %s. " +
		"Include sections for system purpose, data sources, intended use, limitations, and known risks. Use a professional, structured format.",
	model.DocumentRiskPolicy: "You are an expert in AI compliance. Generate a Risk Policy for an AI system, based on the following context: %s. " +
		"Outline the main risks, mitigation strategies, and monitoring plans. Be concise, actionable, and clear for a business audience.",
}

// DocumentPrompt fills the prompt template for kind
func DocumentPrompt(kind model.DocumentKind, context string) string {
	return fmt.Sprintf(documentPrompts[kind], context)
}

var previewPage = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 48rem; margin: 2rem auto; line-height: 1.5; color: #111; }
header { border-bottom: 1px solid #ccc; margin-bottom: 1.5rem; }
footer { margin-top: 2rem; font-size: 0.8rem; color: #666; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<header><h1>{{.Title}}</h1></header>
<main>{{.Body}}</main>
<footer>Generated {{.Generated}}</footer>
</body>
</html>
`))

// DocumentService drafts compliance documents from the user's latest result
type DocumentService struct {
	results   *ResultService
	repo      repository.DocumentRepo
	generator Generator
	markdown  goldmark.Markdown
	log       *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(results *ResultService, repo repository.DocumentRepo, generator Generator, log *zap.Logger) *DocumentService {
	return &DocumentService{
		results:   results,
		repo:      repo,
		generator: generator,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log:       log,
	}
}

// Generate drafts one document. ErrNoQuestionnaire is returned when the user
// has no result yet. Generation failures are reported in the document
// itself (Failed) rather than as an error, and are not stored.
func (s *DocumentService) Generate(ctx context.Context, userID string, kind model.DocumentKind) (*model.GeneratedDocument, error) {
	latest, err := s.results.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}

	contextJSON, err := json.Marshal(latest.Answers)
	if err != nil {
		return nil, err
	}

	doc := &model.GeneratedDocument{
		UserID:    userID,
		Kind:      kind,
		ResultID:  latest.ID,
		CreatedAt: time.Now().UTC(),
	}

	text, err := s.generator.Generate(ctx, PurposeDocument, DocumentPrompt(kind, string(contextJSON)))
	switch {
	case err != nil:
		s.log.Warn("document generation failed", zap.String("user_id", userID), zap.String("kind", string(kind)), zap.Error(err))
		doc.Content = DocumentFailedText
		doc.Failed = true
		return doc, nil
	case strings.TrimSpace(text) == "":
		doc.Content = DocumentEmptyText
		return doc, nil
	}

	doc.Content = text
	if err := s.repo.Save(ctx, doc); err != nil {
		s.log.Warn("failed to store document", zap.String("user_id", userID), zap.String("kind", string(kind)), zap.Error(err))
	}
	return doc, nil
}

// Get returns the stored document, or ErrDocumentNotFound
func (s *DocumentService) Get(ctx context.Context, userID string, kind model.DocumentKind) (*model.GeneratedDocument, error) {
	doc, err := s.repo.Get(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Preview renders the stored document as a printable HTML page
func (s *DocumentService) Preview(ctx context.Context, userID string, kind model.DocumentKind) ([]byte, error) {
	doc, err := s.Get(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	return s.Render(doc)
}

// Render converts a document's Markdown to a standalone HTML page
func (s *DocumentService) Render(doc *model.GeneratedDocument) ([]byte, error) {
	var body bytes.Buffer
	if err := s.markdown.Convert([]byte(doc.Content), &body); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var page bytes.Buffer
	err := previewPage.Execute(&page, struct {
		Title     string
		Body      template.HTML
		Generated string
	}{
		Title:     doc.Kind.Title(),
		Body:      template.HTML(body.String()), // goldmark escapes raw HTML by default
		Generated: doc.CreatedAt.Format("2 January 2006"),
	})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}
