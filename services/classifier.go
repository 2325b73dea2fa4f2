package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Aryaveer-14/civic-mind/models"
)

const geminiModel = "gemini-2.5-flash"

const classifyPrompt = `
You are a civic governance AI.

Analyze the complaint and return ONLY valid JSON:
{
  "problem": "string - clear description of the problem reported",
  "area": "string - geographic area/location affected",
  "solution": "string - recommended solution or action",
  "concerned_authority": "string - government department or authority responsible",
  "contact_information": "string - contact details or phone/email of relevant authority",
  "priority": "High | Medium | Low",
  "risk_level": "Safety | Health | Environment | Low",
  "image_analysis": "string or null"
}

Complaint:
%q`

// Classifier turns free-text complaints (optionally with an image) into a
// structured decision. The AI stage is best effort: any transport, quota,
// or parse failure drops to the deterministic keyword fallback, so Classify
// never fails outward.
type Classifier struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClassifier builds a classifier. With an empty apiKey every Classify
// call goes straight to the fallback rules.
func NewClassifier(apiKey, baseURL string) *Classifier {
	return &Classifier{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled reports whether the AI stage is configured.
func (c *Classifier) Enabled() bool { return c.apiKey != "" }

// Classify analyzes a complaint and reports which mode produced the
// decision, ModeGemini or ModeFallback.
func (c *Classifier) Classify(ctx context.Context, text string, media []byte, filename string) (models.Decision, string) {
	if c.Enabled() {
		decision, err := c.attemptGemini(ctx, text, media, filename)
		if err == nil {
			return decision, models.ModeGemini
		}
		log.Printf("⚠️ Gemini analysis failed, using fallback: %v", err)
	}
	return Fallback(text, len(media) > 0), models.ModeFallback
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Classifier) attemptGemini(ctx context.Context, text string, media []byte, filename string) (models.Decision, error) {
	var decision models.Decision

	prompt := fmt.Sprintf(classifyPrompt, text)
	if len(media) > 0 {
		prompt += "\nNote: An image has been provided. Analyze it for visual evidence of the issue."
	}

	parts := []geminiPart{{Text: prompt}}
	if len(media) > 0 {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: mimeTypeFor(filename),
			Data:     base64.StdEncoding.EncodeToString(media),
		}})
	}

	payload, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: parts}}})
	if err != nil {
		return decision, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, geminiModel, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return decision, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return decision, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return decision, fmt.Errorf("failed to read gemini response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decision, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return decision, fmt.Errorf("gemini returned %d: %s", resp.StatusCode, msg)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return decision, fmt.Errorf("gemini returned no analysis results")
	}

	output := parsed.Candidates[0].Content.Parts[0].Text
	raw := extractJSON(output)
	if raw == "" {
		return decision, fmt.Errorf("gemini response does not contain valid JSON")
	}
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		return decision, fmt.Errorf("failed to parse gemini decision: %w", err)
	}

	log.Printf("🤖 Gemini analysis complete: %s / %s", decision.AuthorityName, decision.Priority)
	return decision, nil
}

// extractJSON returns the first balanced {...} span in s, tolerating prose
// or markdown fences around the JSON payload.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func mimeTypeFor(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
