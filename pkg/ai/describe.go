package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DescribeRequest carries the product fields fed into the description
// prompt.
type DescribeRequest struct {
	Name     string
	Farmer   string
	Location string
	Price    string
	Unit     string
	Image    string
}

// Description is the generated listing copy.
type Description struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

const describeMaxTokens = 300

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// Describe generates a short product description and tags. The model is
// asked for JSON; replies that wrap the JSON in prose are recovered by
// extracting the first object, and a reply with no JSON at all becomes a
// tagless description.
func (p *Provider) Describe(ctx context.Context, req DescribeRequest) (*Description, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("product name is required")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Write a short SEO-friendly product description (40-90 words) and 5 concise tags for the following product. "+
			"Respond with JSON: {\"description\":\"...\",\"tags\":[\"tag1\",\"tag2\"]} Product:\n"+
			"Name: %s\nFarmer: %s\nLocation: %s\nPrice: %s %s\nImage: %s",
		req.Name, req.Farmer, req.Location, req.Price, req.Unit, req.Image,
	)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: RoleSystem, Content: "You are a helpful assistant that returns JSON only."},
			{Role: RoleUser, Content: prompt},
		},
		MaxTokens: describeMaxTokens,
	})
	if err != nil {
		return nil, Classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, Classify(fmt.Errorf("empty completion response"))
	}

	return parseDescription(resp.Choices[0].Message.Content), nil
}

func parseDescription(text string) *Description {
	var desc Description
	if err := json.Unmarshal([]byte(text), &desc); err == nil {
		return &desc
	}
	if match := jsonObjectPattern.FindString(text); match != "" {
		if err := json.Unmarshal([]byte(match), &desc); err == nil {
			return &desc
		}
	}
	return &Description{Description: text, Tags: []string{}}
}
