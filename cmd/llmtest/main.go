package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	appconfig "github.com/eumlog/consultation-engine/internal/config"
	"github.com/eumlog/consultation-engine/internal/conversation"
	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/script"
)

// sampleRecord is a fixed BASIC client used to exercise the providers.
var sampleRecord = intake.ClientRecord{
	Group:               intake.DefaultGroup,
	Name:                "테스트",
	Gender:              intake.GenderFemale,
	BirthToken:          "1995",
	Location:            "전남 순천시",
	Height:              "162",
	Religion:            intake.NonReligious,
	PreferredAgeText:    "90년생까지",
	PreferredHeightText: "175cm 이상",
	SelectedConditions:  []string{"나이", "키"},
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := appconfig.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s := script.Build(sampleRecord)
	var messages []conversation.ChatMessage
	for _, text := range script.IntroMessages(sampleRecord) {
		messages = append(messages, conversation.ChatMessage{Role: conversation.ChatRoleAssistant, Content: text})
	}
	messages = append(messages, conversation.ChatMessage{Role: conversation.ChatRoleUser, Content: script.TurnReminder + "네 대화 가능합니다"})

	req := conversation.LLMRequest{
		System:      []string{script.Instruction(s)},
		Messages:    messages,
		Temperature: float32(cfg.LLMTemperature),
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Generation Provider Test")
	fmt.Println(strings.Repeat("=", 60))

	failed := false
	if cfg.GeminiAPIKey != "" {
		fmt.Println("\n[1] Testing Gemini...")
		client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			fmt.Printf("    ❌ Failed to create Gemini client: %v\n", err)
			failed = true
		} else {
			defer client.Close()
			failed = !smokeTurn(ctx, client, req) || failed
		}
	} else {
		fmt.Println("\n[1] Skipping Gemini test (GEMINI_API_KEY not set)")
	}

	if cfg.OpenAIAPIKey != "" {
		fmt.Println("\n[2] Testing OpenAI...")
		client, err := conversation.NewOpenAILLMClient(cfg.OpenAIAPIKey, cfg.OpenAIModelID)
		if err != nil {
			fmt.Printf("    ❌ Failed to create OpenAI client: %v\n", err)
			failed = true
		} else {
			failed = !smokeTurn(ctx, client, req) || failed
		}
	} else {
		fmt.Println("\n[2] Skipping OpenAI test (OPENAI_API_KEY not set)")
	}

	if failed {
		os.Exit(1)
	}
}

func smokeTurn(ctx context.Context, client conversation.LLMClient, req conversation.LLMRequest) bool {
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("    ❌ error: %v\n", err)
		return false
	}
	fmt.Printf("    ✅ response (%v):\n", elapsed.Round(time.Millisecond))
	for _, bubble := range conversation.SplitBubbles(resp.Text) {
		fmt.Printf("    > %s\n", bubble)
	}
	fmt.Printf("    Tokens: in=%d, out=%d\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return true
}
