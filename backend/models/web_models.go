package models

import "html/template"

// SubmitRequest is the body of POST /verify-submit, sent as a form or JSON.
type SubmitRequest struct {
	RequestID string `json:"requestId" form:"requestId"`
	Answer    string `json:"answer" form:"answer"`
	Address   string `json:"address" form:"address"`
}

// CheckBanRequest is the body of POST /check-ban. RequestID falls back to
// the one bound to the challenge session.
type CheckBanRequest struct {
	Address   string `json:"address"`
	RequestID string `json:"requestId,omitempty"`
}

type CheckBanResponse struct {
	Banned bool `json:"banned"`
}

// ChallengePage is the data rendered into the verify template.
type ChallengePage struct {
	Title     string
	RequestID string
	Image     template.URL
	Error     string
}

// MessagePage is the data rendered into the error and banned templates.
type MessagePage struct {
	Title   string
	Code    int
	Heading string
	Message string
}
