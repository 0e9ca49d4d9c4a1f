package cosmetist

import (
	"context"
	"fmt"

	"github.com/glowly/glowly-backend/internal/model"
	"github.com/glowly/glowly-backend/internal/parse"
)

const verificationPrompt = "Here are 3 images of human face. requires images to be front face, left side face, " +
	"and right side face. If you find that the required images are not present, give negative " +
	"response and ask tell the user what they are missing in simple and less words. " +
	"give response in json like {success: false/true, message: '...'}"

const analysisPrompt = "Please analyze my bare-face photo. List bullet-point concerns (acne, pigmentation, " +
	"redness, wrinkles, etc.) and rate Hydration, Oil Balance, Tone, Barrier Strength, " +
	"and Sensitivity on a 1–5 scale. Keep it concise."

const ratingsPrompt = "From that analysis, output a JSON object with keys hydration, oilBalance, tone, " +
	"barrierStrength, sensitivity (numbers 1-5). No prose."

const shoppingPrompt = "Using that assessment, fetch current shopping options with links and thumbnails " +
	"for the AM/PM plan. Use tools if needed and return markdown with inline product cards. " +
	"Format the response in this format: ```json\n{\n  \"products\": [\n    {\n      " +
	"\"title\": \"Example Product Title\",\n      \"source\": \"ExampleSource.com\",\n      " +
	"\"link\": \"https://example.com/product-page\",\n      \"price\": \"$0.00\",\n      " +
	"\"imageUrl\": \"https://example.com/product-image.jpg\",\n      \"rating\": 0,\n      " +
	"\"ratingCount\": 0,\n      \"productId\": \"123456789\",\n      \"position\": 1\n    }\n  ]\n}\n```"

// WorkflowResult aggregates the four workflow stages. Stages after a failed
// verification stay empty; History always carries every turn that ran.
type WorkflowResult struct {
	Verification string       `json:"verification,omitempty"`
	Analysis     string       `json:"analysis,omitempty"`
	Ratings      string       `json:"ratings,omitempty"`
	Shopping     string       `json:"shopping,omitempty"`
	History      []model.Turn `json:"history"`
}

// VerificationFailure re-parses the verification reply. ok is true only when
// the reply carried a parseable object with success == false; the returned
// message then explains what the photo set is missing. An unparseable reply
// is treated optimistically as passing.
func (r *WorkflowResult) VerificationFailure() (string, bool) {
	obj := parse.ExtractObject(r.Verification)
	success, hasKey := obj["success"].(bool)
	if !hasKey || success {
		return "", false
	}
	message, _ := obj["message"].(string)
	if message == "" {
		message = "Image verification failed"
	}
	return message, true
}

// RunInitialWorkflow runs the four-stage onboarding analysis over one photo
// set: verify angles, analyze skin, restate ratings as JSON, fetch shopping
// recommendations. Each stage appends its prompt and reply to a shared
// history threaded through every model call.
func (a *Agent) RunInitialWorkflow(ctx context.Context, photoDataURLs []string, country string) (*WorkflowResult, error) {
	if len(photoDataURLs) == 0 {
		return nil, fmt.Errorf("cosmetist: at least one photo is required")
	}

	result := &WorkflowResult{History: []model.Turn{}}

	step := func(prompt string) (string, error) {
		result.History = append(result.History, model.Turn{Role: model.RoleUser, Content: prompt})
		reply, err := a.ChatTurn(ctx, photoDataURLs, result.History, country, "")
		if err != nil {
			return "", err
		}
		result.History = append(result.History, model.Turn{Role: model.RoleAssistant, Content: reply})
		return reply, nil
	}

	verification, err := step(verificationPrompt)
	if err != nil {
		return nil, fmt.Errorf("cosmetist: verification stage: %w", err)
	}
	result.Verification = verification

	if _, failed := result.VerificationFailure(); failed {
		return result, nil
	}

	if result.Analysis, err = step(analysisPrompt); err != nil {
		return nil, fmt.Errorf("cosmetist: analysis stage: %w", err)
	}
	if result.Ratings, err = step(ratingsPrompt); err != nil {
		return nil, fmt.Errorf("cosmetist: ratings stage: %w", err)
	}
	if result.Shopping, err = step(shoppingPrompt); err != nil {
		return nil, fmt.Errorf("cosmetist: shopping stage: %w", err)
	}

	return result, nil
}
