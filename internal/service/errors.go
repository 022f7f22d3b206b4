package service

import "errors"

var (
	ErrNoQuestionnaire    = errors.New("no questionnaire result for user")
	ErrSessionNotFound    = errors.New("session not found")
	ErrOwnerRequired      = errors.New("a session needs a token or an X-Client-ID header")
	ErrDocumentNotFound   = errors.New("document not generated yet")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// NoQuestionnaireMessage is shown when a feature needs a completed assessment
const NoQuestionnaireMessage = "No questionnaire answers found. Please complete the assessment first."
