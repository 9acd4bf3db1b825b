package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

var reJSONObject = regexp.MustCompile(`\{[\s\S]*\}`)

// TranslateText asks the Groq chat API to translate text into each of the
// target languages and returns a language-code to translation map. Model
// replies often wrap the JSON in markdown, so the object is extracted
// defensively before parsing.
func TranslateText(text string, targetLangs []string) (map[string]string, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY not set")
	}
	model := os.Getenv("GROQ_MODEL")
	if model == "" {
		model = "llama-3.1-70b-versatile"
	}

	langs := strings.Join(targetLangs, ", ")
	prompt := fmt.Sprintf(`Translate the following text: %q into these languages: %s.
Return ONLY a JSON object where keys are the language codes (from the list: %s) and values are the translations.
Example format: { "zh": "...", "ja": "..." }`, text, langs, langs)

	reqBody := groqRequest{
		Model:       model,
		Messages:    []groqMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
		MaxTokens:   1024,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.groq.com/openai/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groq API error %d: %s", resp.StatusCode, string(body))
	}

	var gr groqResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, err
	}
	if len(gr.Choices) == 0 {
		return nil, fmt.Errorf("groq API returned no choices")
	}

	return ParseTranslationReply(gr.Choices[0].Message.Content)
}

// ParseTranslationReply extracts the JSON object from a model reply and
// parses it into a language map.
func ParseTranslationReply(reply string) (map[string]string, error) {
	match := reJSONObject.FindString(reply)
	if match == "" {
		return nil, fmt.Errorf("failed to parse translation response")
	}
	translations := map[string]string{}
	if err := json.Unmarshal([]byte(match), &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation response: %w", err)
	}
	return translations, nil
}
