package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"Backend-Feedback-Portal/src/models"
)

// Result is what the OCR collaborator read from an ID card.
type Result struct {
	Text string `json:"text"`
	Role string `json:"role,omitempty"`
}

type Client struct {
	url  string
	http *http.Client
}

// NewClient returns nil when url is empty; a nil client skips OCR.
func NewClient(url string) *Client {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	return &Client{url: url, http: &http.Client{Timeout: 20 * time.Second}}
}

// Extract ส่งรูปบัตรไปให้ OCR service แล้วอ่านข้อความกลับมา
func (c *Client) Extract(ctx context.Context, filename string, image []byte) (*Result, error) {
	if c == nil {
		return &Result{}, nil
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ocr service returned %d", resp.StatusCode)
	}

	var out Result
	if err := json.Unmarshal(respBody, &out); err != nil {
		// บาง service ตอบเป็น plain text
		out.Text = string(respBody)
	}
	log.Printf("📤 OCR read %d chars from %s", len(out.Text), filename)
	return &out, nil
}

// InferRole guesses the card holder's role; "" when the card says neither.
// Only student and teacher are ever inferred.
func (r *Result) InferRole() string {
	if r == nil {
		return ""
	}
	if r.Role == models.RoleStudent || r.Role == models.RoleTeacher {
		return r.Role
	}
	return InferRole(r.Text)
}

var (
	teacherWords = []string{"teacher", "lecturer", "professor", "staff", "อาจารย์"}
	studentWords = []string{"student", "นักศึกษา", "นิสิต"}
)

func InferRole(text string) string {
	t := strings.ToLower(text)
	for _, w := range studentWords {
		if strings.Contains(t, w) {
			return models.RoleStudent
		}
	}
	for _, w := range teacherWords {
		if strings.Contains(t, w) {
			return models.RoleTeacher
		}
	}
	return ""
}
