// Package domain contains the wire types for the lyric tokenizer Lambdas.
package domain

import "github.com/pricofy/lyric-tokenizer/internal/filter"

// Request is the input to the tokenizer.
type Request struct {
	RequestID string     `json:"requestId,omitempty"`
	Documents []Document `json:"documents"`
	// KeepPOS and NGWords override the configured filter when set.
	// Each accepts true, false, a string or an array of strings.
	KeepPOS *filter.Selection `json:"keepPos,omitempty"`
	NGWords *filter.Selection `json:"ngWords,omitempty"`
}

// Document is one lyric text as delivered by the page source.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Response is the output from the tokenizer.
type Response struct {
	RequestID       string           `json:"requestId,omitempty"`
	Results         []DocumentResult `json:"results,omitempty"`
	ChunksProcessed int              `json:"chunksProcessed,omitempty"`
	ChunksFailed    int              `json:"chunksFailed,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// DocumentResult holds the tokens of one document.
type DocumentResult struct {
	ID           string   `json:"id"`
	Tokens       []string `json:"tokens"`
	Chunks       int      `json:"chunks"`
	FailedChunks int      `json:"failedChunks,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// AnalyzeRequest is the request format for the analyzer Lambda.
type AnalyzeRequest struct {
	Chunks []string `json:"chunks"`
}

// AnalyzeResponse is the response format from the analyzer Lambda.
// Results has one entry per request chunk, in order.
type AnalyzeResponse struct {
	Results []ChunkAnalysis `json:"results"`
	Error   string          `json:"error,omitempty"`
}

// ChunkAnalysis is the analysis of one chunk. Error is set when it failed.
type ChunkAnalysis struct {
	Morphemes []Morpheme `json:"morphemes,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Morpheme is the wire form of morph.Morpheme.
type Morpheme struct {
	Surface  string `json:"surface"`
	BaseForm string `json:"baseForm"`
	POS      string `json:"pos"`
}
