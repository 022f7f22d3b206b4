package model

import (
	"fmt"
	"time"
)

// DocumentKind names a generated compliance document
type DocumentKind string

const (
	DocumentTransparency DocumentKind = "transparency" // Transparency Notice
	DocumentDatasheet    DocumentKind = "datasheet"    // Data Sheet
	DocumentRiskPolicy   DocumentKind = "risk"         // Risk Policy
)

// DocumentKinds lists the supported kinds in display order
var DocumentKinds = []DocumentKind{DocumentTransparency, DocumentDatasheet, DocumentRiskPolicy}

// ParseDocumentKind validates a kind from a URL segment
func ParseDocumentKind(s string) (DocumentKind, error) {
	for _, k := range DocumentKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

// Title returns the human readable document name
func (k DocumentKind) Title() string {
	switch k {
	case DocumentTransparency:
		return "Transparency Notice"
	case DocumentDatasheet:
		return "Data Sheet"
	case DocumentRiskPolicy:
		return "Risk Policy"
	}
	return string(k)
}

// GeneratedDocument is the latest draft of one document kind for a user
type GeneratedDocument struct {
	UserID    string       `json:"userId" bson:"userId"`
	Kind      DocumentKind `json:"kind" bson:"kind"`
	Content   string       `json:"content" bson:"content"`
	ResultID  string       `json:"resultId" bson:"resultId"` // Result whose answers fed the prompt
	Failed    bool         `json:"failed" bson:"failed"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
}
