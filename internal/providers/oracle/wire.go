package oracle

import "strings"

// Request and response shapes of the generateContent REST API

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func buildRequest(mode Mode, history []Message, prompt string) generateRequest {
	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: instruction(mode)}}},
	}
	for _, m := range history {
		if m.Role == RoleSystem || m.Content == "" {
			continue
		}
		req.Contents = append(req.Contents, content{
			Role:  string(m.Role),
			Parts: []part{{Text: m.Content}},
		})
	}
	req.Contents = append(req.Contents, content{
		Role:  string(RoleUser),
		Parts: []part{{Text: prompt}},
	})
	if mode == ModeSite {
		req.GenerationConfig = &generationConfig{ResponseMimeType: "text/plain"}
	}
	return req
}
